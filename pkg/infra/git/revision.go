package git

import (
	"github.com/m-mizutani/goerr/v2"
	gogit "gopkg.in/src-d/go-git.v4"
)

// HeadRevision returns the commit hash HEAD points to in the repository at dir
func HeadRevision(dir string) (string, error) {
	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		return "", goerr.Wrap(err, "failed to open git repository", goerr.V("dir", dir))
	}

	ref, err := repo.Head()
	if err != nil {
		return "", goerr.Wrap(err, "failed to resolve HEAD", goerr.V("dir", dir))
	}

	return ref.Hash().String(), nil
}
