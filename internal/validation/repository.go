package validation

import (
	"net/url"
	"strings"
)

var supportedGitHosts = []string{"github.com", "gitlab.com", "bitbucket.org"}

// RepositoryURL accepts absolute http(s) URLs of public repositories on the supported hosts.
func RepositoryURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return reject("repository", "Enter a repository URL.")
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "https" && parsed.Scheme != "http") {
		return reject("repository", "Enter a valid repository URL.")
	}

	host := strings.ToLower(parsed.Hostname())
	for _, supported := range supportedGitHosts {
		if host == supported || strings.HasSuffix(host, "."+supported) {
			return nil
		}
	}

	return reject("repository", "Only GitHub, GitLab and Bitbucket repositories are supported.")
}
