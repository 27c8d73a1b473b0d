package resolver

import (
	prerrors "prsummary.dev/prsummary/internal/errors"
	"prsummary.dev/prsummary/internal/model"
)

// Contributors returns the distinct identities credited by commits, in the
// order they first appear. Commits with neither a login nor an author name
// are skipped and reported as AmbiguousAuthorErrors.
func Contributors(commits []model.Commit) ([]string, []error) {
	seen := make(map[string]bool)
	names := make([]string, 0)
	var skipped []error
	for _, c := range commits {
		name, ok := c.Contributor()
		if !ok {
			skipped = append(skipped, prerrors.NewAmbiguousAuthorError(c.SHA))
			continue
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names, skipped
}
