package email

// Email - письмо одному получателю
type Email struct {
	To       string
	Subject  string
	Body     string
	HTMLBody string
}

// TemplateData - данные для шаблонов писем
type TemplateData map[string]interface{}
