package model

// Repository describes one repository returned by the hosting API. It lives
// only for the duration of a single list or backup run.
type Repository struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	CloneURL string `json:"clone_url"`
	SSHURL   string `json:"ssh_url,omitempty"`
	Archived bool   `json:"archived,omitempty"`
	Fork     bool   `json:"fork,omitempty"`
}

// URLFor returns the URL to clone for the given transport
func (r Repository) URLFor(t Transport) string {
	if t == TransportSSH && r.SSHURL != "" {
		return r.SSHURL
	}

	return r.CloneURL
}
