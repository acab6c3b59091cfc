package git

import (
	"fmt"
	"os/exec"
	"strings"
)

// IsGitRepo checks if current directory is a git repository
func IsGitRepo() bool {
	cmd := exec.Command("git", "rev-parse", "--git-dir")
	return cmd.Run() == nil
}

// GitDir returns the path of the .git directory
func GitDir() (string, error) {
	cmd := exec.Command("git", "rev-parse", "--git-dir")
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("failed to locate git directory: %w", err)
	}
	return strings.TrimSpace(string(output)), nil
}

// GetCurrentBranch returns the current branch name
func GetCurrentBranch() (string, error) {
	cmd := exec.Command("git", "rev-parse", "--abbrev-ref", "HEAD")
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("failed to get current branch: %w", err)
	}
	return strings.TrimSpace(string(output)), nil
}

// GetCurrentCommit returns the current commit hash
func GetCurrentCommit() (string, error) {
	cmd := exec.Command("git", "rev-parse", "HEAD")
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("failed to get current commit: %w", err)
	}
	return strings.TrimSpace(string(output)), nil
}

// BranchExists checks if a branch exists
func BranchExists(branch string) bool {
	cmd := exec.Command("git", "rev-parse", "--verify", "--quiet", "refs/heads/"+branch)
	return cmd.Run() == nil
}

// CreateBranch creates a new branch
func CreateBranch(branch string) error {
	cmd := exec.Command("git", "branch", branch)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to create branch %s: %w", branch, err)
	}
	return nil
}

// DeleteBranch deletes a branch
func DeleteBranch(branch string, force bool) error {
	flag := "-d"
	if force {
		flag = "-D"
	}
	cmd := exec.Command("git", "branch", flag, branch)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to delete branch %s: %w", branch, err)
	}
	return nil
}

// ListBranches returns all branches matching a pattern
func ListBranches(pattern string) ([]string, error) {
	cmd := exec.Command("git", "branch", "--list", "--format=%(refname:short)", pattern)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}

	var branches []string
	for _, line := range strings.Split(string(output), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			branches = append(branches, line)
		}
	}
	return branches, nil
}

// ShowFile reads a file from a ref without checking it out
func ShowFile(ref, path string) ([]byte, error) {
	cmd := exec.Command("git", "show", fmt.Sprintf("%s:%s", ref, path))
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s from %s: %w", path, ref, err)
	}
	return output, nil
}

// CreateWorktree creates a git worktree
func CreateWorktree(path, branch string) error {
	cmd := exec.Command("git", "worktree", "add", path, branch)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to create worktree: %s: %w", string(output), err)
	}
	return nil
}

// RemoveWorktree removes a git worktree (with force to handle untracked files)
func RemoveWorktree(path string) error {
	cmd := exec.Command("git", "worktree", "remove", "--force", path)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to remove worktree: %s: %w", string(output), err)
	}
	return nil
}

// AddFilesInDir stages files for commit in a specific directory
func AddFilesInDir(dir string, files ...string) error {
	args := append([]string{"add"}, files...)
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to add files: %w", err)
	}
	return nil
}

// RemoveAllFilesFromIndexInDir removes all files from the git index in a specific directory
func RemoveAllFilesFromIndexInDir(dir string) error {
	cmd := exec.Command("git", "rm", "-r", "-q", "--cached", ".")
	cmd.Dir = dir
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to remove files from index: %w", err)
	}
	return nil
}

// CommitInDirNoVerify creates a commit bypassing hooks (used for snapshot creation)
func CommitInDirNoVerify(dir, message string) error {
	cmd := exec.Command("git", "commit", "--no-verify", "-m", message)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to commit: %w\nOutput: %s", err, string(output))
	}
	return nil
}
