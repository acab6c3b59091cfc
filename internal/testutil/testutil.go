package testutil

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pders01/reflexion/internal/models"
)

// TempGitRepo creates a temporary git repository for testing
type TempGitRepo struct {
	Path string
	T    *testing.T
}

// NewTempGitRepo creates a new temporary git repository with one commit.
// The repository is removed when the test ends.
func NewTempGitRepo(t *testing.T) *TempGitRepo {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "reflexion-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}

	r := &TempGitRepo{Path: tmpDir, T: t}
	t.Cleanup(r.Cleanup)

	r.git("init", "-q")
	// Configure git user (required for commits)
	r.git("config", "user.name", "Test User")
	r.git("config", "user.email", "test@example.com")
	r.git("config", "commit.gpgsign", "false")

	r.CreateFile("README.md", "# Test Repository\n")
	r.Commit("Initial commit")

	return r
}

// Chdir switches the working directory into the repository until the test ends
func (r *TempGitRepo) Chdir() {
	r.T.Helper()

	oldWd, err := os.Getwd()
	if err != nil {
		r.T.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(r.Path); err != nil {
		r.T.Fatalf("failed to chdir into repo: %v", err)
	}
	r.T.Cleanup(func() { os.Chdir(oldWd) })
}

// Cleanup removes the temporary git repository
func (r *TempGitRepo) Cleanup() {
	r.T.Helper()
	if err := os.RemoveAll(r.Path); err != nil {
		r.T.Errorf("failed to cleanup temp repo: %v", err)
	}
}

// CreateFile creates a file in the repository
func (r *TempGitRepo) CreateFile(name, content string) string {
	r.T.Helper()
	path := filepath.Join(r.Path, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		r.T.Fatalf("failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		r.T.Fatalf("failed to create file: %v", err)
	}
	return path
}

// WriteSnapshot writes snap as JSON into the repository and returns its path
func (r *TempGitRepo) WriteSnapshot(name string, snap models.Snapshot) string {
	r.T.Helper()
	data, err := json.Marshal(snap)
	if err != nil {
		r.T.Fatalf("failed to marshal snapshot: %v", err)
	}
	return r.CreateFile(name, string(data))
}

// Commit stages and commits all changes
func (r *TempGitRepo) Commit(message string) {
	r.T.Helper()
	r.git("add", ".")
	r.git("commit", "-q", "-m", message)
}

// GetBranches returns all branches in the repository
func (r *TempGitRepo) GetBranches() []string {
	r.T.Helper()
	return parseLines(r.output("branch", "--list", "--format=%(refname:short)"))
}

// BranchExists checks if a branch exists
func (r *TempGitRepo) BranchExists(branch string) bool {
	r.T.Helper()

	cmd := exec.Command("git", "rev-parse", "--verify", "--quiet", "refs/heads/"+branch)
	cmd.Dir = r.Path
	return cmd.Run() == nil
}

// FileExists checks if a file exists in a branch
func (r *TempGitRepo) FileExists(branch, file string) bool {
	r.T.Helper()

	cmd := exec.Command("git", "ls-tree", "-r", "--name-only", branch)
	cmd.Dir = r.Path
	output, err := cmd.Output()
	if err != nil {
		return false
	}

	for _, line := range parseLines(string(output)) {
		if line == file {
			return true
		}
	}
	return false
}

// GetFileContent retrieves file content from a specific branch
func (r *TempGitRepo) GetFileContent(branch, file string) string {
	r.T.Helper()
	return r.output("show", branch+":"+file)
}

// CurrentBranch returns the checked out branch
func (r *TempGitRepo) CurrentBranch() string {
	r.T.Helper()
	return strings.TrimSpace(r.output("rev-parse", "--abbrev-ref", "HEAD"))
}

func (r *TempGitRepo) git(args ...string) {
	r.T.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = r.Path
	if output, err := cmd.CombinedOutput(); err != nil {
		r.T.Fatalf("git %s failed: %v\n%s", strings.Join(args, " "), err, output)
	}
}

func (r *TempGitRepo) output(args ...string) string {
	r.T.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = r.Path
	output, err := cmd.Output()
	if err != nil {
		r.T.Fatalf("git %s failed: %v", strings.Join(args, " "), err)
	}
	return string(output)
}

// parseLines splits output into trimmed, non-empty lines
func parseLines(output string) []string {
	var lines []string
	for _, line := range strings.Split(output, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
