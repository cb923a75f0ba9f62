package git

// PlaceholderPassword is sent with the token-as-username basic auth
const PlaceholderPassword = "x-oauth-basic"

// Credentials selects how a clone authenticates
type Credentials struct {
	Token    string // https: used as the basic-auth username
	SSHAgent bool   // ssh: authenticate with keys held by the SSH agent
}

// CloneRequest describes one full clone
type CloneRequest struct {
	URL             string
	Path            string
	Credentials     Credentials
	InsecureSkipTLS bool
}
