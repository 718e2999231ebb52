package github

import "testing"

func TestValidateRepoRef(t *testing.T) {
	tests := []struct {
		owner, repo string
		wantErr     bool
	}{
		{"spf13", "cobra", false},
		{"go-chi", "chi", false},
		{"owner", "repo.with_dots-and_underscores", false},
		{"", "repo", true},
		{"owner", "", true},
		{"-owner", "repo", true},
		{"this-owner-name-is-far-too-long-for-github", "repo", true},
		{"owner", "bad/repo", true},
	}

	for _, tt := range tests {
		t.Run(tt.owner+"/"+tt.repo, func(t *testing.T) {
			err := ValidateRepoRef(tt.owner, tt.repo)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRepoRef(%q, %q) error = %v, wantErr %v", tt.owner, tt.repo, err, tt.wantErr)
			}
		})
	}
}
