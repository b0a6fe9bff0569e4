package graph

import "fmt"

const (
	DefaultBaseURL       = "https://graph.microsoft.com/v1.0"
	DefaultAuthorityHost = "https://login.microsoftonline.com"
	DefaultScope         = "https://graph.microsoft.com/.default"
)

// Credential identifies the app registration used for the client-credentials grant.
type Credential struct {
	TenantID     string
	ClientID     string
	ClientSecret string
}

// Site is the subset of a Graph site resource we read.
type Site struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	WebURL      string `json:"webUrl"`
}

// Drive is a document library within a site.
type Drive struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	DriveType string `json:"driveType"`
	WebURL    string `json:"webUrl"`
}

// DriveItem is the response of a content upload.
type DriveItem struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Size   int64  `json:"size"`
	WebURL string `json:"webUrl"`
}

// Recipient wraps an address the way sendMail expects it.
type Recipient struct {
	EmailAddress EmailAddress `json:"emailAddress"`
}

type EmailAddress struct {
	Address string `json:"address"`
}

type ItemBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

type MailMessage struct {
	Subject      string      `json:"subject"`
	Body         ItemBody    `json:"body"`
	ToRecipients []Recipient `json:"toRecipients"`
}

type sendMailRequest struct {
	Message         MailMessage `json:"message"`
	SaveToSentItems bool        `json:"saveToSentItems"`
}

// APIError is a non-2xx Graph response.
type APIError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Graph API error %d on %s %s: %s", e.Status, e.Method, e.Path, e.Body)
}
