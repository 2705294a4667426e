package ptl

import "fmt"

// StatusOkay is the Status value the API reports for a successful call.
const StatusOkay = "Okay"

// Credentials is the access-key/secret-key pair sent with every request.
type Credentials struct {
	AccessKey string
	SecretKey string
}

// Valid reports whether both halves of the pair are set.
func (c Credentials) Valid() bool {
	return c.AccessKey != "" && c.SecretKey != ""
}

// Identity is the caller resolved from the whoami endpoint.
type Identity struct {
	Username string `json:"username" yaml:"username"`
	Email    string `json:"email"    yaml:"email"`
	OrgName  string `json:"org_name" yaml:"org_name"`
}

// RepoContext identifies the branch or tag that triggered the run.
type RepoContext struct {
	Type string `json:"type" yaml:"type"`
	Name string `json:"name" yaml:"name"`
}

// String returns the context as "type/name".
func (c RepoContext) String() string {
	return fmt.Sprintf("%s/%s", c.Type, c.Name)
}

// ServiceResult names one service reported back by the API.
type ServiceResult struct {
	Name string `json:"Name" yaml:"name"`
}

// WhoamiResponse is the body of POST v0/whoami.
type WhoamiResponse struct {
	Status   string `json:"Status"`
	Reason   string `json:"Reason,omitempty"`
	Username string `json:"Username"`
	Email    string `json:"Email"`
	OrgName  string `json:"OrgName"`
}

// DeployResponse is the body of PUT v0/deploy.
type DeployResponse struct {
	Status   string          `json:"Status"`
	Reason   string          `json:"Reason,omitempty"`
	Services []ServiceResult `json:"Services"`
}

// DeletedServices lists the services terminated by an undeploy.
type DeletedServices struct {
	Service []ServiceResult `json:"Service"`
}

// UndeployResponse is the body of DELETE v0/projects/{app}/{type}/{name}.
type UndeployResponse struct {
	Status  string           `json:"Status,omitempty"`
	Reason  string           `json:"Reason,omitempty"`
	Deleted *DeletedServices `json:"Deleted,omitempty"`
}
