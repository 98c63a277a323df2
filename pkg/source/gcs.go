package source

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"k8s.io/klog/v2"
)

// GCSObjectOpener reads objects from Google Cloud Storage using application
// default credentials.
type GCSObjectOpener struct{}

var _ ObjectOpener = (*GCSObjectOpener)(nil)

func (o *GCSObjectOpener) NewReader(ctx context.Context, bucket, object string) (io.ReadCloser, error) {
	log := klog.FromContext(ctx)

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating GCS storage client: %w", err)
	}

	log.Info("downloading model from GCS", "source", "gs://"+bucket+"/"+object)

	r, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		client.Close()
		return nil, err
	}
	return &objectReader{Reader: r, client: client}, nil
}

// objectReader closes the storage client along with the object reader.
type objectReader struct {
	*storage.Reader
	client *storage.Client
}

func (r *objectReader) Close() error {
	err := r.Reader.Close()
	if cerr := r.client.Close(); err == nil {
		err = cerr
	}
	return err
}
