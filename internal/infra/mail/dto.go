package mail

type LeadAcceptedEmailData struct {
	CustomerName   string
	LeadTitle      string
	LeadLink       string
	FreelancerName string
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	BaseURL  string
}
