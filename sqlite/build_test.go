package sqlite_test

import (
	"context"
	"sync"
	"testing"

	"github.com/fwojciec/docindex"
	"github.com/fwojciec/docindex/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestBuild returns a build of one document per title.
func newTestBuild(t testing.TB, project string, titles ...string) *docindex.Build {
	t.Helper()

	idx := docindex.NewIndex()
	var docs []*docindex.SourceDoc
	for i, title := range titles {
		name := docindex.GenerateAnchor(title)
		idx.DocNames = append(idx.DocNames, name)
		idx.Filenames = append(idx.Filenames, name+".md")
		idx.Titles = append(idx.Titles, title)
		idx.TitleTerms[name] = docindex.Postings{i}
		docs = append(docs, &docindex.SourceDoc{DocName: name, Content: "# " + title})
	}

	build, err := docindex.NewBuild(project, idx, docs)
	require.NoError(t, err)
	return build
}

func TestBuildService_CreateBuild(t *testing.T) {
	t.Parallel()

	t.Run("assigns id, hash and timestamp", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewBuildService(setupTestDB(t))
		build := newTestBuild(t, "demo", "Home", "Install")

		require.NoError(t, svc.CreateBuild(context.Background(), build))

		assert.NotEmpty(t, build.ID)
		assert.Len(t, build.ContentHash, 16)
		assert.False(t, build.CreatedAt.IsZero())
		assert.NotEmpty(t, build.Docs[0].ContentHash)
	})

	t.Run("unchanged index is a conflict", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewBuildService(setupTestDB(t))
		ctx := context.Background()
		require.NoError(t, svc.CreateBuild(ctx, newTestBuild(t, "demo", "Home")))

		err := svc.CreateBuild(ctx, newTestBuild(t, "demo", "Home"))

		require.Error(t, err)
		assert.Equal(t, docindex.ECONFLICT, docindex.ErrorCode(err))
	})

	t.Run("concurrent identical builds are recorded once", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewBuildService(setupTestDB(t))
		builds := make([]*docindex.Build, 4)
		for i := range builds {
			builds[i] = newTestBuild(t, "demo", "Home")
		}

		errs := make([]error, len(builds))
		var wg sync.WaitGroup
		for i, b := range builds {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs[i] = svc.CreateBuild(context.Background(), b)
			}()
		}
		wg.Wait()

		var recorded, conflicts int
		for _, err := range errs {
			switch docindex.ErrorCode(err) {
			case "":
				recorded++
			case docindex.ECONFLICT:
				conflicts++
			}
		}
		assert.Equal(t, 1, recorded)
		assert.Equal(t, len(builds)-1, conflicts)

		found, err := svc.FindBuilds(context.Background(), docindex.BuildFilter{})
		require.NoError(t, err)
		assert.Len(t, found, 1)
	})

	t.Run("same index in another project is recorded", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewBuildService(setupTestDB(t))
		ctx := context.Background()
		require.NoError(t, svc.CreateBuild(ctx, newTestBuild(t, "demo", "Home")))

		require.NoError(t, svc.CreateBuild(ctx, newTestBuild(t, "other", "Home")))
	})

	t.Run("reverting to an older index is recorded", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewBuildService(setupTestDB(t))
		ctx := context.Background()
		require.NoError(t, svc.CreateBuild(ctx, newTestBuild(t, "demo", "Home")))
		require.NoError(t, svc.CreateBuild(ctx, newTestBuild(t, "demo", "Home", "Install")))

		require.NoError(t, svc.CreateBuild(ctx, newTestBuild(t, "demo", "Home")))
	})

	t.Run("rejects invalid builds", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewBuildService(setupTestDB(t))

		err := svc.CreateBuild(context.Background(), &docindex.Build{Project: "demo"})

		require.Error(t, err)
		assert.Equal(t, docindex.EINVALID, docindex.ErrorCode(err))
	})
}

func TestBuildService_FindBuildByID(t *testing.T) {
	t.Parallel()

	t.Run("round trips payload and documents", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewBuildService(setupTestDB(t))
		ctx := context.Background()
		build := newTestBuild(t, "demo", "Home", "Install")
		require.NoError(t, svc.CreateBuild(ctx, build))

		got, err := svc.FindBuildByID(ctx, build.ID)

		require.NoError(t, err)
		assert.Equal(t, build.ID, got.ID)
		assert.Equal(t, "demo", got.Project)
		assert.Equal(t, 2, got.Documents)
		assert.Equal(t, build.Payload, got.Payload)
		assert.True(t, build.CreatedAt.Equal(got.CreatedAt))
		require.Len(t, got.Docs, 2)
		assert.Equal(t, &docindex.BuildDocument{
			Position:    1,
			DocName:     "install",
			Filename:    "install.md",
			Title:       "Install",
			ContentHash: build.Docs[1].ContentHash,
			Content:     "# Install",
		}, got.Docs[1])

		idx, err := got.Index()
		require.NoError(t, err)
		assert.Equal(t, []string{"home", "install"}, idx.DocNames)
	})

	t.Run("missing build is ENOTFOUND", func(t *testing.T) {
		t.Parallel()

		_, err := sqlite.NewBuildService(setupTestDB(t)).FindBuildByID(context.Background(), "nope")

		require.Error(t, err)
		assert.Equal(t, docindex.ENOTFOUND, docindex.ErrorCode(err))
	})
}

func TestBuildService_FindBuilds(t *testing.T) {
	t.Parallel()

	setup := func(t *testing.T) (*sqlite.BuildService, []*docindex.Build) {
		t.Helper()
		svc := sqlite.NewBuildService(setupTestDB(t))
		builds := []*docindex.Build{
			newTestBuild(t, "demo", "A"),
			newTestBuild(t, "demo", "A", "B"),
			newTestBuild(t, "other", "A"),
			newTestBuild(t, "demo", "A", "B", "C"),
		}
		for _, b := range builds {
			require.NoError(t, svc.CreateBuild(context.Background(), b))
		}
		return svc, builds
	}
	ids := func(builds []*docindex.Build) []string {
		var out []string
		for _, b := range builds {
			out = append(out, b.ID)
		}
		return out
	}

	t.Run("lists newest first without payloads", func(t *testing.T) {
		t.Parallel()

		svc, builds := setup(t)

		got, err := svc.FindBuilds(context.Background(), docindex.BuildFilter{})

		require.NoError(t, err)
		assert.Equal(t, []string{builds[3].ID, builds[2].ID, builds[1].ID, builds[0].ID}, ids(got))
		assert.Nil(t, got[0].Payload)
		assert.Equal(t, 3, got[0].Documents)
	})

	t.Run("filters by project and paginates", func(t *testing.T) {
		t.Parallel()

		svc, builds := setup(t)
		project := "demo"

		page, err := svc.FindBuilds(context.Background(), docindex.BuildFilter{Project: &project, Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, []string{builds[3].ID, builds[1].ID}, ids(page))

		rest, err := svc.FindBuilds(context.Background(), docindex.BuildFilter{Project: &project, Offset: 2})
		require.NoError(t, err)
		assert.Equal(t, []string{builds[0].ID}, ids(rest))
	})

	t.Run("filters by id", func(t *testing.T) {
		t.Parallel()

		svc, builds := setup(t)

		got, err := svc.FindBuilds(context.Background(), docindex.BuildFilter{ID: &builds[2].ID})

		require.NoError(t, err)
		assert.Equal(t, []string{builds[2].ID}, ids(got))
	})

	t.Run("returns empty slice when nothing matches", func(t *testing.T) {
		t.Parallel()

		svc, _ := setup(t)
		project := "missing"

		got, err := svc.FindBuilds(context.Background(), docindex.BuildFilter{Project: &project})

		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestBuildService_FindLatestBuild(t *testing.T) {
	t.Parallel()

	t.Run("returns the newest build of the project", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewBuildService(setupTestDB(t))
		ctx := context.Background()
		first := newTestBuild(t, "demo", "A")
		second := newTestBuild(t, "demo", "A", "B")
		require.NoError(t, svc.CreateBuild(ctx, first))
		require.NoError(t, svc.CreateBuild(ctx, second))
		require.NoError(t, svc.CreateBuild(ctx, newTestBuild(t, "other", "Z")))

		got, err := svc.FindLatestBuild(ctx, "demo")

		require.NoError(t, err)
		assert.Equal(t, second.ID, got.ID)
		assert.Len(t, got.Docs, 2)
	})

	t.Run("project without builds is ENOTFOUND", func(t *testing.T) {
		t.Parallel()

		_, err := sqlite.NewBuildService(setupTestDB(t)).FindLatestBuild(context.Background(), "demo")

		require.Error(t, err)
		assert.Equal(t, docindex.ENOTFOUND, docindex.ErrorCode(err))
	})
}

func TestBuildService_DeleteBuild(t *testing.T) {
	t.Parallel()

	t.Run("removes the build and its documents", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewBuildService(db)
		ctx := context.Background()
		build := newTestBuild(t, "demo", "A", "B")
		require.NoError(t, svc.CreateBuild(ctx, build))

		require.NoError(t, svc.DeleteBuild(ctx, build.ID))

		_, err := svc.FindBuildByID(ctx, build.ID)
		assert.Equal(t, docindex.ENOTFOUND, docindex.ErrorCode(err))
		var docs int
		require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM build_documents").Scan(&docs))
		assert.Zero(t, docs)
	})

	t.Run("missing build is ENOTFOUND", func(t *testing.T) {
		t.Parallel()

		err := sqlite.NewBuildService(setupTestDB(t)).DeleteBuild(context.Background(), "nope")

		require.Error(t, err)
		assert.Equal(t, docindex.ENOTFOUND, docindex.ErrorCode(err))
	})
}
