package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	goption "google.golang.org/api/option"
)

type AvatarStore interface {
	// Upload stores the avatar of userID and returns its public URL.
	Upload(ctx context.Context, userID uuid.UUID, contentType, ext string, r io.Reader) (string, error)
}

// GCSAvatarStore keeps avatars in a public Cloud Storage bucket under
// avatars/{user id}/{random}.{ext}. Older avatars of the user are removed
// after a successful upload.
type GCSAvatarStore struct {
	client *storage.Client
	bucket string
}

// NewGCSAvatarStore uses Application Default Credentials unless
// credentialsFile is set.
func NewGCSAvatarStore(ctx context.Context, bucket, credentialsFile string) (*GCSAvatarStore, error) {
	var opts []goption.ClientOption
	if credentialsFile != "" {
		opts = append(opts, goption.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCSAvatarStore{client: client, bucket: bucket}, nil
}

func (s *GCSAvatarStore) Upload(ctx context.Context, userID uuid.UUID, contentType, ext string, r io.Reader) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	objectName := ObjectName(userID, uuid.New(), ext)
	w := s.client.Bucket(s.bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=3600"

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("copy avatar to GCS writer: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize upload: %w", err)
	}

	if err := s.prune(ctx, userID, objectName); err != nil {
		log.Printf("WARN: Failed to remove old avatars of user %s: %v", userID, err)
	}
	return PublicURL(s.bucket, objectName), nil
}

// prune deletes every avatar of userID except keep.
func (s *GCSAvatarStore) prune(ctx context.Context, userID uuid.UUID, keep string) error {
	bkt := s.client.Bucket(s.bucket)
	it := bkt.Objects(ctx, &storage.Query{Prefix: userPrefix(userID)})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("list avatars: %w", err)
		}
		if attrs.Name == keep {
			continue
		}
		if err := bkt.Object(attrs.Name).Delete(ctx); err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
			return fmt.Errorf("delete %s: %w", attrs.Name, err)
		}
	}
}

func (s *GCSAvatarStore) Close() error {
	return s.client.Close()
}

func userPrefix(userID uuid.UUID) string {
	return "avatars/" + userID.String() + "/"
}

func ObjectName(userID, fileID uuid.UUID, ext string) string {
	return userPrefix(userID) + fileID.String() + "." + ext
}

func PublicURL(bucket, objectName string) string {
	return "https://storage.googleapis.com/" + bucket + "/" + objectName
}
