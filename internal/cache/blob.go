package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

// blobClient is the subset of [*azblob.Client] the blob store uses. A missing
// blob is reported as [fs.ErrNotExist].
type blobClient interface {
	Download(ctx context.Context, container, name string) ([]byte, error)
	Upload(ctx context.Context, container, name string, data []byte) error
}

// BlobStore keeps caches as blobs in an Azure Storage container, named the
// same way [FileStore] names its files.
type BlobStore struct {
	client    blobClient
	container string
	mu        sync.Mutex
}

// NewBlobStore connects to the storage account at accountURL. A nil cred uses
// [azidentity.NewDefaultAzureCredential].
func NewBlobStore(accountURL, container string, cred azcore.TokenCredential) (*BlobStore, error) {
	if cred == nil {
		defaultCred, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, fmt.Errorf("creating azure credential: %w", err)
		}
		cred = defaultCred
	}

	client, err := azblob.NewClient(accountURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("creating blob client for %s: %w", accountURL, err)
	}

	return &BlobStore{client: &azblobClientWrapper{inner: client}, container: container}, nil
}

func (s *BlobStore) Load(ctx context.Context, sourceFile string) (*EvaluationCache, LoadStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := FileName(sourceFile)
	data, err := s.client.Download(ctx, s.container, name)
	if errors.Is(err, fs.ErrNotExist) {
		return New(sourceFile), StatusCreated, nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("downloading cache blob %s: %w", name, err)
	}

	return decode(ctx, s.container+"/"+name, sourceFile, data)
}

func (s *BlobStore) Save(ctx context.Context, c *EvaluationCache) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := encode(c)
	if err != nil {
		return err
	}

	name := FileName(c.SourceFile)
	if err := s.client.Upload(ctx, s.container, name, data); err != nil {
		return fmt.Errorf("uploading cache blob %s: %w", name, err)
	}
	return nil
}

type azblobClientWrapper struct {
	inner *azblob.Client
}

func (w *azblobClientWrapper) Download(ctx context.Context, container, name string) ([]byte, error) {
	resp, err := w.inner.DownloadStream(ctx, container, name, nil)
	if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
		return nil, fs.ErrNotExist
	}
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	return io.ReadAll(resp.Body)
}

// Upload overwrites the blob, creating the container on first use.
func (w *azblobClientWrapper) Upload(ctx context.Context, container, name string, data []byte) error {
	_, err := w.inner.UploadBuffer(ctx, container, name, data, nil)
	if !bloberror.HasCode(err, bloberror.ContainerNotFound) {
		return err
	}

	if _, err := w.inner.CreateContainer(ctx, container, nil); err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return fmt.Errorf("creating container %s: %w", container, err)
	}
	_, err = w.inner.UploadBuffer(ctx, container, name, data, nil)
	return err
}
