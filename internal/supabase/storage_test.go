package supabase

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	storage "github.com/supabase-community/storage-go"
)

type recordedUpload struct {
	bucket string
	path   string
	body   []byte
	opts   storage.FileOptions
}

func fakeStorage(t *testing.T, err error) (*StorageClient, *[]recordedUpload) {
	t.Helper()
	var calls []recordedUpload
	client := newStorageClient(func(bucket, storagePath string, data io.Reader, opts storage.FileOptions) error {
		body, readErr := io.ReadAll(data)
		require.NoError(t, readErr)
		calls = append(calls, recordedUpload{bucket: bucket, path: storagePath, body: body, opts: opts})
		return err
	}, "https://project.supabase.co/", "incubation-media")
	client.now = func() time.Time { return time.Unix(0, 1700000000000000000) }
	return client, &calls
}

func TestStorageClient_Upload(t *testing.T) {
	client, calls := fakeStorage(t, nil)

	url, err := client.Upload(context.Background(), []byte("%PDF"), "Pitch Deck.pdf", "application/pdf", "/proposal_attachments/")
	require.NoError(t, err)

	require.Len(t, *calls, 1)
	call := (*calls)[0]
	assert.Equal(t, "incubation-media", call.bucket)
	assert.Equal(t, "proposal_attachments/1700000000000000000_Pitch_Deck.pdf", call.path)
	assert.Equal(t, []byte("%PDF"), call.body)
	require.NotNil(t, call.opts.ContentType)
	assert.Equal(t, "application/pdf", *call.opts.ContentType)
	require.NotNil(t, call.opts.Upsert)
	assert.False(t, *call.opts.Upsert)

	assert.Equal(t,
		"https://project.supabase.co/storage/v1/object/public/incubation-media/proposal_attachments/1700000000000000000_Pitch_Deck.pdf",
		url)
}

func TestStorageClient_UploadDefaults(t *testing.T) {
	client, calls := fakeStorage(t, nil)

	_, err := client.Upload(context.Background(), []byte{1}, `photos\my face.png`, "", "employee_profiles")
	require.NoError(t, err)
	_, err = client.Upload(context.Background(), []byte{1}, "", "", "employee_profiles")
	require.NoError(t, err)

	require.Len(t, *calls, 2)
	assert.Equal(t, "application/octet-stream", *(*calls)[0].opts.ContentType)
	assert.Equal(t, "employee_profiles/1700000000000000000_my_face.png", (*calls)[0].path)
	assert.Equal(t, "employee_profiles/1700000000000000000_upload", (*calls)[1].path)
}

func TestStorageClient_UploadFailure(t *testing.T) {
	errDenied := errors.New("row-level security")
	client, _ := fakeStorage(t, errDenied)

	_, err := client.Upload(context.Background(), []byte{1}, "a.png", "image/png", "mentor_profiles")
	assert.ErrorIs(t, err, errDenied)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = client.Upload(ctx, []byte{1}, "a.png", "image/png", "mentor_profiles")
	assert.ErrorIs(t, err, context.Canceled)
}
