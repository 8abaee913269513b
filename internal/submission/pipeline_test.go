package submission

import (
	"context"
	"errors"
	"testing"

	"github.com/angelmondragon/jewelry-admin/internal/catalog"
	"github.com/angelmondragon/jewelry-admin/internal/drafts"
	"github.com/angelmondragon/jewelry-admin/internal/imagecodec"
	"github.com/angelmondragon/jewelry-admin/internal/localcache"
	"github.com/angelmondragon/jewelry-admin/internal/toasts"
	"github.com/angelmondragon/jewelry-admin/pkg/enums"
	pkgerrors "github.com/angelmondragon/jewelry-admin/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRemote struct {
	created   localcache.Record
	addErr    error
	deleteErr error
	forms     []drafts.Form
	deleted   []string
}

func (f *fakeRemote) Add(_ context.Context, form drafts.Form) (localcache.Record, error) {
	f.forms = append(f.forms, form)
	if f.addErr != nil {
		return localcache.Record{}, f.addErr
	}
	return f.created, nil
}

func (f *fakeRemote) Delete(_ context.Context, _ enums.EntityKind, id string) error {
	f.deleted = append(f.deleted, id)
	return f.deleteErr
}

type failingBackend struct {
	*localcache.MemoryBackend
	writeErr error
}

func (f failingBackend) Write(ctx context.Context, key string, value []byte) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	return f.MemoryBackend.Write(ctx, key, value)
}

type harness struct {
	pipeline *Pipeline
	remote   *fakeRemote
	cache    *localcache.Reconciler
	catalog  *catalog.Catalog
	toasts   *toasts.Service
	registry *imagecodec.Registry
}

func newHarness(t *testing.T, backend localcache.Backend) *harness {
	t.Helper()
	if backend == nil {
		backend = localcache.NewMemoryBackend()
	}
	notices := toasts.New(0, nil)
	cache, err := localcache.New(backend, nil, notices)
	require.NoError(t, err)
	remote := &fakeRemote{created: localcache.NewRecord("501", map[string]any{"title": "Ring"})}
	hasRemote := func(k enums.EntityKind) bool { return k != enums.EntityKindBanner }

	cat, err := catalog.New(nil, nil, cache, notices, nil)
	require.NoError(t, err)
	for _, kind := range enums.EntityKinds() {
		view, err := cat.View(kind)
		require.NoError(t, err)
		view.Mount(context.Background())
	}

	pipeline, err := New(Params{
		Remote:    remote,
		HasRemote: hasRemote,
		Cache:     cache,
		Views:     cat,
		Notifier:  notices,
	})
	require.NoError(t, err)
	return &harness{
		pipeline: pipeline,
		remote:   remote,
		cache:    cache,
		catalog:  cat,
		toasts:   notices,
		registry: imagecodec.NewRegistry(),
	}
}

func (h *harness) productDraft(t *testing.T) *drafts.Store {
	t.Helper()
	store, err := drafts.New(enums.EntityKindProduct, h.registry)
	require.NoError(t, err)
	require.NoError(t, store.SetField("title", "Ring"))
	require.NoError(t, store.SetField("price", "120.50"))
	require.NoError(t, store.SetField("stock", "3"))
	require.NoError(t, store.ToggleTag("color", "gold", true))
	handle := h.registry.Put(imagecodec.Blob{Data: []byte("jpeg-bytes"), MIME: "image/jpeg"})
	require.NoError(t, store.SetImageSlot(1, handle))
	return store
}

func (h *harness) viewIDs(t *testing.T, kind enums.EntityKind) []string {
	t.Helper()
	view, err := h.catalog.View(kind)
	require.NoError(t, err)
	var out []string
	for _, rec := range view.Items(catalog.Query{}) {
		out = append(out, rec.ID)
	}
	return out
}

func lastToast(t *testing.T, svc *toasts.Service) toasts.Toast {
	t.Helper()
	recent := svc.Recent()
	require.NotEmpty(t, recent)
	return recent[len(recent)-1]
}

func TestSubmitProductSuccess(t *testing.T) {
	h := newHarness(t, nil)
	store := h.productDraft(t)

	result, err := h.pipeline.Submit(context.Background(), store)
	require.NoError(t, err)

	require.Len(t, h.remote.forms, 1)
	form := h.remote.forms[0]
	require.Len(t, form.Files, 1)
	assert.Equal(t, "image1.jpg", form.Files[0].FileName)

	require.NotNil(t, result.Created)
	assert.Equal(t, "501", result.Created.ID)
	assert.Equal(t, 1, result.Released)
	assert.Equal(t, 0, h.registry.Len())
	assert.Equal(t, []string{"501"}, h.viewIDs(t, enums.EntityKindProduct))

	cached := h.cache.Load(context.Background(), localcache.ProductsKey)
	require.Len(t, cached, 1)
	assert.Equal(t, result.Local.ID, cached[0].ID)
	assert.Equal(t, "Ring", cached[0].String("title"))

	title, _ := store.Field("title")
	assert.Empty(t, title, "draft must be reset")
	assert.Equal(t, toasts.LevelSuccess, lastToast(t, h.toasts).Level)
}

func TestSubmitRemoteFailureKeepsDraftAndCache(t *testing.T) {
	h := newHarness(t, nil)
	h.remote.addErr = pkgerrors.New(pkgerrors.CodeRemoteCall, "product.add failed")
	store := h.productDraft(t)

	_, err := h.pipeline.Submit(context.Background(), store)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeRemoteCall))

	title, _ := store.Field("title")
	assert.Equal(t, "Ring", title)
	assert.Len(t, store.Images(), 1)
	assert.Equal(t, 1, h.registry.Len())
	assert.Empty(t, h.cache.Load(context.Background(), localcache.ProductsKey))
	assert.Empty(t, h.viewIDs(t, enums.EntityKindProduct))

	toast := lastToast(t, h.toasts)
	assert.Equal(t, toasts.LevelError, toast.Level)
	assert.True(t, toast.Retryable)
}

func TestSubmitInvalidDraftNeverCallsRemote(t *testing.T) {
	h := newHarness(t, nil)
	store, err := drafts.New(enums.EntityKindProduct, h.registry)
	require.NoError(t, err)
	require.NoError(t, store.SetField("title", "Ring"))

	_, err = h.pipeline.Submit(context.Background(), store)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeMissingField))
	assert.Empty(t, h.remote.forms)
	assert.Equal(t, string(pkgerrors.CodeMissingField), lastToast(t, h.toasts).Code)
}

func TestSubmitLocalFailureAfterRemoteSuccess(t *testing.T) {
	h := newHarness(t, failingBackend{MemoryBackend: localcache.NewMemoryBackend(), writeErr: errors.New("disk full")})
	store := h.productDraft(t)

	result, err := h.pipeline.Submit(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, []string{localSaveFailedMessage}, result.Warnings)
	assert.Equal(t, []string{"501"}, h.viewIDs(t, enums.EntityKindProduct))

	title, _ := store.Field("title")
	assert.Empty(t, title, "draft is reset once the backend has the record")
	assert.Equal(t, toasts.LevelWarning, lastToast(t, h.toasts).Level)
}

func TestSubmitBannerIsLocalOnly(t *testing.T) {
	h := newHarness(t, nil)
	store, err := drafts.New(enums.EntityKindBanner, h.registry)
	require.NoError(t, err)
	require.NoError(t, store.SetField("title", "Summer sale"))
	require.NoError(t, store.SetField("description", "20% off"))
	require.NoError(t, store.SetImageSlot(0, h.registry.Put(imagecodec.Blob{Data: []byte("b"), MIME: "image/jpeg"})))

	result, err := h.pipeline.Submit(context.Background(), store)
	require.NoError(t, err)
	assert.Nil(t, result.Created)
	assert.Empty(t, h.remote.forms)

	cached := h.cache.Load(context.Background(), localcache.KeyFor(enums.EntityKindBanner))
	require.Len(t, cached, 1)
	assert.Equal(t, "data:image/jpeg;base64,Yg==", cached[0].String("imageUrl"))
	assert.Equal(t, []string{result.Local.ID}, h.viewIDs(t, enums.EntityKindBanner))
}

func TestDeleteRemovesLocallyEvenWhenRemoteFails(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	require.NoError(t, h.cache.Save(ctx, localcache.ProductsKey, []localcache.Record{
		localcache.NewRecord("7", map[string]any{"title": "A"}),
		localcache.NewRecord("8", map[string]any{"title": "B"}),
	}))
	view, _ := h.catalog.View(enums.EntityKindProduct)
	view.Mount(ctx)
	h.remote.deleteErr = pkgerrors.New(pkgerrors.CodeRemoteCall, "product.delete failed")

	result, err := h.pipeline.Delete(ctx, enums.EntityKindProduct, "7")
	require.NoError(t, err)
	assert.True(t, result.RemoteFailed)
	assert.False(t, result.LocalFailed)
	assert.Equal(t, []string{"7"}, h.remote.deleted)
	assert.Equal(t, []string{"8"}, h.viewIDs(t, enums.EntityKindProduct))

	cached := h.cache.Load(ctx, localcache.ProductsKey)
	require.Len(t, cached, 1)
	assert.Equal(t, "8", cached[0].ID)
}

func TestDeleteBannerSkipsRemote(t *testing.T) {
	h := newHarness(t, nil)
	_, err := h.pipeline.Delete(context.Background(), enums.EntityKindBanner, "1")
	require.NoError(t, err)
	assert.Empty(t, h.remote.deleted)

	_, err = h.pipeline.Delete(context.Background(), enums.EntityKindBanner, " ")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeMissingField))
}
