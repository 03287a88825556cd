package memory

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/xavierca1/hirelocal/internal/entity"
)

// Seed is the YAML fixture the memory driver can start from. Profiles and subscriptions
// are owned by other services, so a local run has no other way to get them.
type Seed struct {
	Users []struct {
		ID    string `yaml:"id"`
		Name  string `yaml:"name"`
		Email string `yaml:"email"`
		Phone string `yaml:"phone"`
		Role  string `yaml:"role"`
	} `yaml:"users"`
	Profiles []struct {
		ID         string  `yaml:"id"`
		UserID     string  `yaml:"userId"`
		CategoryID string  `yaml:"categoryId"`
		Area       string  `yaml:"area"`
		Status     string  `yaml:"verificationStatus"`
		Available  bool    `yaml:"available"`
		Rating     float64 `yaml:"rating"`
	} `yaml:"profiles"`
	Subscriptions []struct {
		ID           string        `yaml:"id"`
		FreelancerID string        `yaml:"freelancerId"`
		Type         string        `yaml:"type"`
		Status       string        `yaml:"status"`
		Duration     time.Duration `yaml:"duration"`
	} `yaml:"subscriptions"`
}

func LoadSeed(path string) (*Seed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	var s Seed
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	return &s, nil
}

// Apply loads the fixture. Subscription durations run from now.
func (s *Seed) Apply(users *UserStore, profiles *ProfileStore, now time.Time) {
	for _, u := range s.Users {
		users.Put(&entity.User{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone, Role: entity.Role(u.Role)})
	}
	for _, p := range s.Profiles {
		status := entity.VerificationStatus(p.Status)
		if status == "" {
			status = entity.VerificationApproved
		}
		profiles.PutProfile(&entity.FreelancerProfile{
			ID:                 p.ID,
			UserID:             p.UserID,
			CategoryID:         p.CategoryID,
			Area:               p.Area,
			VerificationStatus: status,
			IsAvailable:        p.Available,
			Rating:             p.Rating,
			CreatedAt:          now,
			UpdatedAt:          now,
		})
	}
	for _, sub := range s.Subscriptions {
		typ := entity.SubscriptionType(sub.Type)
		if typ == "" {
			typ = entity.SubscriptionLead
		}
		row := entity.NewSubscription(sub.FreelancerID, typ, now, sub.Duration)
		if sub.ID != "" {
			row.ID = sub.ID
		}
		if sub.Status != "" {
			row.Status = entity.SubscriptionStatus(sub.Status)
		}
		profiles.PutSubscription(row)
	}
}
