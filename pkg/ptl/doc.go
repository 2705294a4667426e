// Package ptl provides the types, interfaces, and error helpers shared by the
// PushToLive deployment agent.
//
// # Overview
//
// The ptl package defines the application manifest model (Manifest, Service,
// Build), the repository context derived from the CI environment
// (RepoContext), and the request/response payloads exchanged with the
// PushToLive orchestration API. A concrete API client lives in
// internal/client; the deploy/undeploy workflow that ties manifest loading,
// archiving and the API together lives in internal/deploy.
//
// # Manifests
//
// A manifest is the ptl.yml document of a project:
//
//	name: demo
//	services:
//	  web:
//	    build: ./app
//	    port: 8080
//	  redis:
//	    image: redis:7
//
// Services keep their declaration order and every key the agent does not
// understand is carried through unchanged. Manifest values are treated as
// immutable: WithContext and WithZipPack return modified copies.
//
// # Errors
//
// Remote failures surface as *APIError (HTTP level) or *StatusError
// (application level, Status != "Okay"). Use IsNotFound, IsServerError and
// IsClientError rather than inspecting status codes directly.
package ptl
