package runinfo

import "testing"

// clearCIEnv blanks every variable FromEnv consults so tests control the
// full picture regardless of the machine they run on.
func clearCIEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"CI", "GITHUB_ACTIONS", "GITLAB_CI", "BUILDKITE", "JENKINS_URL",
		"GITHUB_REPOSITORY", "GITHUB_HEAD_REF", "GITHUB_REF_NAME", "GITHUB_REF",
		"GITHUB_SHA", "GITHUB_WORKFLOW", "GITHUB_RUN_ID", "GITHUB_ACTOR", "GITHUB_SERVER_URL",
		"CI_PROJECT_PATH", "BUILD_REPOSITORY_NAME",
		"CI_COMMIT_REF_NAME", "BRANCH_NAME", "GIT_BRANCH",
		"CI_COMMIT_SHA", "GIT_COMMIT",
		"CI_PIPELINE_ID", "BUILD_ID", "CI_JOB_URL", "BUILD_URL",
		"EPQREF_CI", "EPQREF_CI_PROVIDER", "EPQREF_CI_REPOSITORY", "EPQREF_CI_BRANCH",
		"EPQREF_CI_COMMIT", "EPQREF_CI_WORKFLOW", "EPQREF_CI_RUN_ID",
		"EPQREF_CI_PULL_REQUEST", "EPQREF_CI_ACTOR", "EPQREF_CI_BUILD_URL",
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}

func TestFromEnvOutsideCI(t *testing.T) {
	clearCIEnv(t)
	if info := FromEnv(); info != nil {
		t.Fatalf("expected nil outside CI, got %+v", info)
	}
}

func TestFromEnvGitHubActions(t *testing.T) {
	clearCIEnv(t)
	t.Setenv("GITHUB_ACTIONS", "true")
	t.Setenv("GITHUB_REPOSITORY", "acme/epqref")
	t.Setenv("GITHUB_REF", "refs/pull/42/merge")
	t.Setenv("GITHUB_REF_NAME", "refs/heads/main")
	t.Setenv("GITHUB_SHA", "deadbeef")
	t.Setenv("GITHUB_WORKFLOW", "golden")
	t.Setenv("GITHUB_RUN_ID", "12345")
	t.Setenv("GITHUB_ACTOR", "octocat")

	info := FromEnv()
	if info == nil {
		t.Fatal("expected run info")
	}
	if !info.CI || info.Provider != "github_actions" {
		t.Fatalf("provider = %+v", info)
	}
	if info.Branch != "main" {
		t.Fatalf("branch not normalized: %q", info.Branch)
	}
	if info.PullRequest != "42" {
		t.Fatalf("pull request = %q", info.PullRequest)
	}
	if info.BuildURL != "https://github.com/acme/epqref/actions/runs/12345" {
		t.Fatalf("build url = %q", info.BuildURL)
	}
}

func TestFromEnvBuildkite(t *testing.T) {
	clearCIEnv(t)
	t.Setenv("BUILDKITE", "true")
	t.Setenv("GIT_COMMIT", "cafebabe")

	info := FromEnv()
	if info == nil {
		t.Fatal("expected run info")
	}
	if !info.CI || info.Provider != "buildkite" {
		t.Fatalf("info = %+v", info)
	}
	if info.Commit != "cafebabe" {
		t.Fatalf("commit = %q", info.Commit)
	}
}

func TestFromEnvGenericCI(t *testing.T) {
	clearCIEnv(t)
	t.Setenv("CI", "1")
	t.Setenv("GIT_BRANCH", "origin/feature/dumps")
	t.Setenv("GIT_COMMIT", "cafebabe")
	t.Setenv("BUILD_ID", "77")

	info := FromEnv()
	if info == nil {
		t.Fatal("expected run info")
	}
	if info.Provider != "generic" {
		t.Fatalf("provider = %q", info.Provider)
	}
	if info.Branch != "feature/dumps" {
		t.Fatalf("branch = %q", info.Branch)
	}
	if info.Commit != "cafebabe" || info.RunID != "77" {
		t.Fatalf("info = %+v", info)
	}
}

func TestFromEnvExplicitOverrides(t *testing.T) {
	clearCIEnv(t)
	t.Setenv("GITHUB_ACTIONS", "true")
	t.Setenv("GITHUB_SHA", "deadbeef")
	t.Setenv("EPQREF_CI_COMMIT", "0verridden")
	t.Setenv("EPQREF_CI_PROVIDER", "Custom")

	info := FromEnv()
	if info == nil {
		t.Fatal("expected run info")
	}
	if info.Commit != "0verridden" {
		t.Fatalf("explicit commit lost: %q", info.Commit)
	}
	if info.Provider != "custom" {
		t.Fatalf("provider not lowercased: %q", info.Provider)
	}
}

func TestFromEnvExplicitOnly(t *testing.T) {
	clearCIEnv(t)
	t.Setenv("EPQREF_CI_RUN_ID", "local-9")

	info := FromEnv()
	if info == nil {
		t.Fatal("expected run info")
	}
	// Any explicit override implies a CI run.
	if !info.CI || info.RunID != "local-9" {
		t.Fatalf("info = %+v", info)
	}
}
