package source

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 serves objects from a map, listing with "/" delimiters.
type fakeS3 struct {
	s3iface.S3API
	objects map[string]string
}

func (f *fakeS3) ListObjectsV2PagesWithContext(_ aws.Context, in *s3.ListObjectsV2Input, fn func(*s3.ListObjectsV2Output, bool) bool, _ ...request.Option) error {
	prefix := aws.StringValue(in.Prefix)
	seen := map[string]bool{}
	for k := range f.objects {
		rest, ok := strings.CutPrefix(k, prefix)
		if !ok {
			continue
		}
		if dir, _, nested := strings.Cut(rest, "/"); nested {
			seen[prefix+dir+"/"] = true
		}
	}
	names := make([]string, 0, len(seen))
	for p := range seen {
		names = append(names, p)
	}
	sort.Strings(names)
	out := &s3.ListObjectsV2Output{}
	for _, p := range names {
		out.CommonPrefixes = append(out.CommonPrefixes, &s3.CommonPrefix{Prefix: aws.String(p)})
	}
	fn(out, true)
	return nil
}

func (f *fakeS3) GetObjectWithContext(_ aws.Context, in *s3.GetObjectInput, _ ...request.Option) (*s3.GetObjectOutput, error) {
	body, ok := f.objects[aws.StringValue(in.Key)]
	if !ok {
		return nil, awserr.New(s3.ErrCodeNoSuchKey, "The specified key does not exist.", nil)
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader([]byte(body)))}, nil
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string]string{
		"arc/v1.2.1/ARC.csv": "Variable\nsubjid\n",
		"arc/v1.2.1/COMMIT":  "abc\n",
		"arc/v1.2.1/Translations/Spanish/ARC_Spanish.csv": "Variable\n",
		"arc/v1.1.0/ARC.csv":                              "Variable\n",
		"arc/latest/README":                               "",
	}}
}

func TestS3_Source(t *testing.T) {
	ctx := context.Background()
	src := NewS3WithClient(newFakeS3(), "bucket", "/arc/")

	versions, err := src.Versions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"v1.1.0", "v1.2.1"}, versions)

	commit, err := src.Commit(ctx, "v1.2.1")
	require.NoError(t, err)
	assert.Equal(t, "abc", commit)

	commit, err = src.Commit(ctx, "v1.1.0")
	require.NoError(t, err)
	assert.Equal(t, "v1.1.0", commit)

	_, err = src.Commit(ctx, "v2.0.0")
	assert.ErrorIs(t, err, ErrNotFound)

	langs, err := src.Languages(ctx, "v1.2.1")
	require.NoError(t, err)
	assert.Equal(t, []string{"English", "Spanish"}, langs)

	langs, err = src.Languages(ctx, "v1.1.0")
	require.NoError(t, err)
	assert.Equal(t, []string{"English"}, langs)

	body, err := src.Catalogue(ctx, "v1.2.1")
	require.NoError(t, err)
	assert.Equal(t, "Variable\nsubjid\n", string(body))

	_, err = src.OptionTable(ctx, "v1.2.1", "English", "inclusion_Diseases")
	assert.ErrorIs(t, err, ErrNotFound)
}
