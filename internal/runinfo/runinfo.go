// Package runinfo collects CI/run metadata for session reports.
package runinfo

import (
	"os"
	"regexp"
	"strings"
)

var githubPullRefPattern = regexp.MustCompile(`^refs/pull/([0-9]+)/`)

// BasicInfo captures CI metadata recorded in session summaries.
type BasicInfo struct {
	CI          bool   `json:"ci,omitempty"`
	Provider    string `json:"provider,omitempty"`
	Repository  string `json:"repository,omitempty"`
	Branch      string `json:"branch,omitempty"`
	Commit      string `json:"commit,omitempty"`
	Workflow    string `json:"workflow,omitempty"`
	RunID       string `json:"run_id,omitempty"`
	PullRequest string `json:"pull_request,omitempty"`
	Actor       string `json:"actor,omitempty"`
	BuildURL    string `json:"build_url,omitempty"`
}

// FromEnv builds run metadata from environment variables. Explicit
// EPQREF_CI_* values take precedence over provider defaults. Returns nil
// when nothing identifies a CI run.
func FromEnv() *BasicInfo {
	info := detectBase()
	applyOverrides(&info)
	normalize(&info)
	if info.IsZero() {
		return nil
	}
	return &info
}

// IsZero reports whether all fields are empty.
func (b BasicInfo) IsZero() bool {
	return !b.CI &&
		b.Provider == "" &&
		b.Repository == "" &&
		b.Branch == "" &&
		b.Commit == "" &&
		b.Workflow == "" &&
		b.RunID == "" &&
		b.PullRequest == "" &&
		b.Actor == "" &&
		b.BuildURL == ""
}

func detectBase() BasicInfo {
	info := BasicInfo{}

	if isTruthy(env("GITHUB_ACTIONS")) {
		info.CI = true
		info.Provider = "github_actions"
		info.Repository = env("GITHUB_REPOSITORY")
		info.Branch = envFirst("GITHUB_HEAD_REF", "GITHUB_REF_NAME")
		info.Commit = env("GITHUB_SHA")
		info.Workflow = env("GITHUB_WORKFLOW")
		info.RunID = env("GITHUB_RUN_ID")
		info.Actor = env("GITHUB_ACTOR")
		info.PullRequest = githubPullRequestFromRef(env("GITHUB_REF"))
		serverURL := env("GITHUB_SERVER_URL")
		if serverURL == "" {
			serverURL = "https://github.com"
		}
		if info.Repository != "" && info.RunID != "" {
			info.BuildURL = strings.TrimRight(serverURL, "/") + "/" + info.Repository + "/actions/runs/" + info.RunID
		}
	}

	if isTruthy(env("GITLAB_CI")) {
		info.CI = true
		if info.Provider == "" {
			info.Provider = "gitlab_ci"
		}
	}
	if isTruthy(env("BUILDKITE")) {
		info.CI = true
		if info.Provider == "" {
			info.Provider = "buildkite"
		}
	}
	if env("JENKINS_URL") != "" {
		info.CI = true
		if info.Provider == "" {
			info.Provider = "jenkins"
		}
	}
	if isTruthy(env("CI")) {
		info.CI = true
	}

	setIfEmpty(&info.Repository, envFirst("CI_PROJECT_PATH", "BUILD_REPOSITORY_NAME"))
	setIfEmpty(&info.Branch, envFirst("CI_COMMIT_REF_NAME", "BRANCH_NAME", "GIT_BRANCH"))
	setIfEmpty(&info.Commit, envFirst("CI_COMMIT_SHA", "GIT_COMMIT"))
	setIfEmpty(&info.RunID, envFirst("CI_PIPELINE_ID", "BUILD_ID"))
	setIfEmpty(&info.BuildURL, envFirst("CI_JOB_URL", "BUILD_URL"))

	return info
}

func applyOverrides(info *BasicInfo) {
	explicit := false
	if v, ok := lookupTrimmed("EPQREF_CI"); ok && v != "" {
		info.CI = isTruthy(v)
	}
	explicit = setFromEnv(&info.Provider, "EPQREF_CI_PROVIDER") || explicit
	explicit = setFromEnv(&info.Repository, "EPQREF_CI_REPOSITORY") || explicit
	explicit = setFromEnv(&info.Branch, "EPQREF_CI_BRANCH") || explicit
	explicit = setFromEnv(&info.Commit, "EPQREF_CI_COMMIT") || explicit
	explicit = setFromEnv(&info.Workflow, "EPQREF_CI_WORKFLOW") || explicit
	explicit = setFromEnv(&info.RunID, "EPQREF_CI_RUN_ID") || explicit
	explicit = setFromEnv(&info.PullRequest, "EPQREF_CI_PULL_REQUEST") || explicit
	explicit = setFromEnv(&info.Actor, "EPQREF_CI_ACTOR") || explicit
	explicit = setFromEnv(&info.BuildURL, "EPQREF_CI_BUILD_URL") || explicit
	if explicit && !info.CI {
		info.CI = true
	}
}

func normalize(info *BasicInfo) {
	info.Provider = strings.TrimSpace(strings.ToLower(info.Provider))
	info.Repository = strings.TrimSpace(info.Repository)
	info.Branch = normalizeBranch(info.Branch)
	info.Commit = strings.TrimSpace(info.Commit)
	info.Workflow = strings.TrimSpace(info.Workflow)
	info.RunID = strings.TrimSpace(info.RunID)
	info.PullRequest = strings.TrimSpace(info.PullRequest)
	info.Actor = strings.TrimSpace(info.Actor)
	info.BuildURL = strings.TrimSpace(info.BuildURL)
	if info.CI && info.Provider == "" {
		info.Provider = "generic"
	}
}

func normalizeBranch(branch string) string {
	branch = strings.TrimSpace(branch)
	branch = strings.TrimPrefix(branch, "refs/heads/")
	branch = strings.TrimPrefix(branch, "origin/")
	return branch
}

func githubPullRequestFromRef(ref string) string {
	m := githubPullRefPattern.FindStringSubmatch(strings.TrimSpace(ref))
	if len(m) > 1 {
		return m[1]
	}
	return ""
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func envFirst(keys ...string) string {
	for _, key := range keys {
		if v := env(key); v != "" {
			return v
		}
	}
	return ""
}

func lookupTrimmed(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	return strings.TrimSpace(v), ok
}

func setIfEmpty(dst *string, value string) {
	if *dst == "" && value != "" {
		*dst = value
	}
}

func setFromEnv(dst *string, key string) bool {
	if v, ok := lookupTrimmed(key); ok && v != "" {
		*dst = v
		return true
	}
	return false
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
