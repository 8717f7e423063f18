package docindex

import (
	"context"
	"time"
)

// Build is a recorded index build for a documentation project.
type Build struct {
	ID          string    `json:"id"`
	Project     string    `json:"project"`
	ContentHash string    `json:"contentHash"`
	Documents   int       `json:"documents"`
	Terms       int       `json:"terms"`
	CreatedAt   time.Time `json:"createdAt"`

	// Payload is the searchindex.js script produced by the build.
	Payload []byte `json:"-"`

	// Docs lists the documents indexed by the build, in index order.
	Docs []*BuildDocument `json:"docs,omitempty"`
}

// BuildDocument records one document of a build.
type BuildDocument struct {
	Position    int    `json:"position"`
	DocName     string `json:"docname"`
	Filename    string `json:"filename"`
	Title       string `json:"title"`
	ContentHash string `json:"contentHash"`
	Content     string `json:"-"`
}

// NewBuild prepares a build record for idx. docs supplies the markdown
// content of each document and may be nil.
func NewBuild(project string, idx *Index, docs []*SourceDoc) (*Build, error) {
	payload, err := MarshalJS(idx)
	if err != nil {
		return nil, err
	}

	content := make(map[string]string, len(docs))
	for _, d := range docs {
		content[d.DocName] = d.Content
	}

	b := &Build{
		Project:   project,
		Documents: idx.Len(),
		Terms:     len(idx.Terms),
		Payload:   payload,
	}
	for i, name := range idx.DocNames {
		b.Docs = append(b.Docs, &BuildDocument{
			Position: i,
			DocName:  name,
			Filename: idx.Filenames[i],
			Title:    idx.Titles[i],
			Content:  content[name],
		})
	}
	return b, nil
}

// Validate returns an error if the build contains invalid fields.
func (b *Build) Validate() error {
	if b.Project == "" {
		return Errorf(EINVALID, "build project required")
	}
	if len(b.Payload) == 0 {
		return Errorf(EINVALID, "build payload required")
	}
	return nil
}

// Index decodes the build's payload.
func (b *Build) Index() (*Index, error) {
	return UnmarshalJS(b.Payload)
}

// BuildService represents a service for recording index builds.
type BuildService interface {
	// CreateBuild records a new build and assigns its ID, hash and timestamp.
	// Returns ECONFLICT if the payload is identical to the project's latest build.
	CreateBuild(ctx context.Context, build *Build) error

	// FindBuildByID retrieves a build, its payload and documents.
	// Returns ENOTFOUND if the build does not exist.
	FindBuildByID(ctx context.Context, id string) (*Build, error)

	// FindBuilds retrieves builds matching the filter, newest first.
	// Payloads and documents are not loaded.
	FindBuilds(ctx context.Context, filter BuildFilter) ([]*Build, error)

	// FindLatestBuild retrieves the newest build of a project.
	// Returns ENOTFOUND if the project has no builds.
	FindLatestBuild(ctx context.Context, project string) (*Build, error)

	// DeleteBuild permanently removes a build and its documents.
	// Returns ENOTFOUND if the build does not exist.
	DeleteBuild(ctx context.Context, id string) error
}

// BuildFilter represents a filter for FindBuilds.
type BuildFilter struct {
	ID      *string `json:"id"`
	Project *string `json:"project"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// IndexWriter persists a finished index.
type IndexWriter interface {
	// WriteIndex writes idx as a searchindex.js script to path.
	WriteIndex(ctx context.Context, path string, idx *Index) error
}
