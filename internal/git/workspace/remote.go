package workspace

import (
	"sort"

	"github.com/go-git/go-git/v5"

	"github.com/verustcode/giteebridge/internal/git/remoteurl"
	apperrors "github.com/verustcode/giteebridge/pkg/errors"
)

// DetectRemote finds the repository on server that the working copy at path
// belongs to. path may be any directory inside the working copy. The origin
// remote is preferred, then remotes in name order; the first URL that
// points at server and parses as owner/repository wins.
func DetectRemote(path string, server remoteurl.ServerPath) (remoteurl.RemoteLocation, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return remoteurl.RemoteLocation{}, mapGitError(err, "open repository")
	}
	remotes, err := repo.Remotes()
	if err != nil {
		return remoteurl.RemoteLocation{}, mapGitError(err, "list remotes")
	}

	sort.SliceStable(remotes, func(i, j int) bool {
		a, b := remotes[i].Config().Name, remotes[j].Config().Name
		if (a == DefaultRemote) != (b == DefaultRemote) {
			return a == DefaultRemote
		}
		return a < b
	})

	for _, r := range remotes {
		for _, u := range r.Config().URLs {
			if !server.Matches(u) {
				continue
			}
			if loc, ok := remoteurl.ParseRemote(u); ok {
				return loc, nil
			}
		}
	}
	return remoteurl.RemoteLocation{}, apperrors.New(apperrors.ErrCodeGitNotFound,
		"no remote of "+server.Host+" found in "+path)
}
