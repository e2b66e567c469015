package minio

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DRSN-tech/storefront/internal/cfg"
	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type fakeImageRepo struct {
	mu        sync.Mutex
	objects   map[string]*domain.Image
	inFlight  atomic.Int32
	maxFlight atomic.Int32
	deletes   int
}

func newFakeImageRepo() *fakeImageRepo {
	return &fakeImageRepo{objects: make(map[string]*domain.Image)}
}

func (f *fakeImageRepo) Upload(ctx context.Context, image *domain.Image) (string, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		cur := f.maxFlight.Load()
		if n <= cur || f.maxFlight.CompareAndSwap(cur, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)

	if ctx.Err() != nil {
		return "", errors.New("upload canceled")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[image.ObjectKey] = image
	return image.ObjectKey, nil
}

func (f *fakeImageRepo) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	delete(f.objects, key)
	return nil
}

func (f *fakeImageRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

func newInfra(repo usecase.ImageRepository, limit int) *MinioInfrastructure {
	infra := NewMinioInfrastructure(repo, &cfg.MinIOCfg{
		BucketName:        "product-images",
		PublicURL:         "http://cdn.local/",
		UploadImagesLimit: limit,
	}, logger.NewNop(), context.Background())
	infra.cleanupBackoff = time.Millisecond
	return infra
}

func images(mimes ...string) []usecase.ProductImage {
	res := make([]usecase.ProductImage, 0, len(mimes))
	for i, m := range mimes {
		res = append(res, *usecase.NewProductImage([]byte{byte(i)}, m, "img"))
	}
	return res
}

func TestUploadImagesKeepsOrderAndLimit(t *testing.T) {
	defer goleak.VerifyNone(t)

	repo := newFakeImageRepo()
	infra := newInfra(repo, 2)

	res, err := infra.UploadImages(context.Background(), usecase.NewUploadImagesReq(
		"rose-water", images("image/jpeg", "image/png", "image/webp", "image/png", "image/jpeg"),
	))
	require.NoError(t, err)
	require.Len(t, res.ImagesKeys, 5)

	assert.True(t, strings.HasPrefix(res.ImagesKeys[0], "rose-water/"))
	assert.True(t, strings.HasSuffix(res.ImagesKeys[0], ".jpg"))
	assert.True(t, strings.HasSuffix(res.ImagesKeys[1], ".png"))
	assert.True(t, strings.HasSuffix(res.ImagesKeys[2], ".webp"))
	assert.LessOrEqual(t, repo.maxFlight.Load(), int32(2))
	assert.Equal(t, 5, repo.count())
}

func TestUploadImagesFailureCleansUp(t *testing.T) {
	defer goleak.VerifyNone(t)

	repo := newFakeImageRepo()
	infra := newInfra(repo, 1)

	_, err := infra.UploadImages(context.Background(), usecase.NewUploadImagesReq(
		"p", images("image/jpeg", "image/png", "application/pdf"),
	))
	require.ErrorIs(t, err, e.ErrUnsupportedMediaType)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, infra.WaitForCleanup(ctx))
	assert.Equal(t, 0, repo.count())
}

func TestUploadImagesRequiresImages(t *testing.T) {
	infra := newInfra(newFakeImageRepo(), 2)

	_, err := infra.UploadImages(context.Background(), usecase.NewUploadImagesReq("p", nil))
	assert.ErrorIs(t, err, e.ErrNoImages)
}

func TestPublicURL(t *testing.T) {
	infra := newInfra(newFakeImageRepo(), 1)
	assert.Equal(t, "http://cdn.local/product-images/p/a.jpg", infra.PublicURL("p/a.jpg"))
}
