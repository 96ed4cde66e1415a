package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/feedbox/internal/common"
	"github.com/dmitrijs2005/feedbox/internal/server/config"
	"github.com/dmitrijs2005/feedbox/internal/server/forms"
	"github.com/dmitrijs2005/feedbox/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type s3Calls struct {
	region       string
	baseEndpoint string
	putBucket    string
	putKey       string
	putBody      []byte
	presignKey   string
	expires      time.Duration
}

// stubS3 replaces the AWS seams for the duration of the test.
func stubS3(t *testing.T, putErr, presignErr error) *s3Calls {
	t.Helper()
	calls := &s3Calls{}

	origLoad, origNew, origPresign, origPut, origGet :=
		loadDefaultAWSConfig, newS3ClientFromConfig, newS3PresignClient, putObject, presignGetObject
	t.Cleanup(func() {
		loadDefaultAWSConfig, newS3ClientFromConfig, newS3PresignClient, putObject, presignGetObject =
			origLoad, origNew, origPresign, origPut, origGet
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		calls.region = lo.Region
		return aws.Config{Region: lo.Region}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		var o s3.Options
		for _, fn := range optFns {
			fn(&o)
		}
		calls.baseEndpoint = aws.ToString(o.BaseEndpoint)
		return s3.NewFromConfig(cfg, optFns...)
	}
	putObject = func(_ *s3.Client, _ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		if putErr != nil {
			return nil, putErr
		}
		calls.putBucket = aws.ToString(in.Bucket)
		calls.putKey = aws.ToString(in.Key)
		calls.putBody, _ = io.ReadAll(in.Body)
		return &s3.PutObjectOutput{}, nil
	}
	presignGetObject = func(_ *s3.PresignClient, _ context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		if presignErr != nil {
			return nil, presignErr
		}
		var po s3.PresignOptions
		for _, fn := range optFns {
			fn(&po)
		}
		calls.presignKey = aws.ToString(in.Key)
		calls.expires = po.Expires
		return &v4.PresignedHTTPRequest{URL: "https://s3.local/" + aws.ToString(in.Key) + "?sig=1"}, nil
	}
	return calls
}

func exportConfig() *config.Config {
	var c config.Config
	c.LoadDefaults()
	return &c
}

func seedExportStore(t *testing.T) (*memStore, string) {
	t.Helper()
	store := newMemStore()
	boxID := newTestID(10)
	store.boxes[boxID] = &models.FeedbackBox{
		ID: boxID, UserID: alice.UserID, Name: "Lobby Kiosk", FormID: "F100",
		CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	data, err := models.NewPayload(map[string]any{"rating": 5.0})
	require.NoError(t, err)
	store.subs[newTestID(20)] = &models.Submission{
		ID: newTestID(20), SubmissionID: "s1", FeedbackBoxID: boxID, Data: data,
		CreatedAt: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
	}
	return store, boxID
}

func TestExportService_Export(t *testing.T) {
	calls := stubS3(t, nil, nil)
	store, boxID := seedExportStore(t)
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	s := NewExportService(db, store, exportConfig(), forms.DefaultLinks())
	out, err := s.Export(context.Background(), alice, boxID)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.True(t, strings.HasPrefix(out.Key, "exports/"+alice.UserID+"/"+boxID+"/"))
	assert.True(t, strings.HasSuffix(out.Key, ".json"))
	assert.Equal(t, out.Key, calls.putKey)
	assert.Equal(t, out.Key, calls.presignKey)
	assert.Equal(t, "feedbox", calls.putBucket)
	assert.Equal(t, "us-east-1", calls.region)
	assert.Equal(t, "http://127.0.0.1:9000/", calls.baseEndpoint)
	assert.Equal(t, 15*time.Minute, calls.expires)
	assert.Equal(t, "https://s3.local/"+out.Key+"?sig=1", out.URL)
	assert.Equal(t, 1, out.SubmissionCount)

	var doc struct {
		Box struct {
			Name      string `json:"name"`
			FormID    string `json:"form_id"`
			QRCodeURL string `json:"qr_code_url"`
		} `json:"box"`
		Submissions []struct {
			SubmissionID string         `json:"submission_id"`
			Data         map[string]any `json:"data"`
		} `json:"submissions"`
	}
	require.NoError(t, json.Unmarshal(calls.putBody, &doc))
	assert.Equal(t, "Lobby Kiosk", doc.Box.Name)
	assert.Equal(t, "https://qr.example/F100.png", doc.Box.QRCodeURL)
	require.Len(t, doc.Submissions, 1)
	assert.Equal(t, "s1", doc.Submissions[0].SubmissionID)
	assert.Equal(t, 5.0, doc.Submissions[0].Data["rating"])
}

func TestExportService_Export_Ownership(t *testing.T) {
	stubS3(t, nil, nil)
	store, boxID := seedExportStore(t)
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	s := NewExportService(db, store, exportConfig(), forms.DefaultLinks())
	_, err := s.Export(context.Background(), bob, boxID)
	assert.ErrorIs(t, err, common.ErrorForbidden)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExportService_Export_StorageErrors(t *testing.T) {
	tests := []struct {
		name       string
		putErr     error
		presignErr error
		want       string
	}{
		{"upload", errors.New("denied"), nil, "error uploading export"},
		{"presign", nil, errors.New("bad creds"), "error presigning export"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubS3(t, tt.putErr, tt.presignErr)
			store, boxID := seedExportStore(t)
			db, mock := newMockDB(t)
			mock.ExpectBegin()
			mock.ExpectCommit()

			s := NewExportService(db, store, exportConfig(), forms.DefaultLinks())
			_, err := s.Export(context.Background(), alice, boxID)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestExportService_Export_ConfigError(t *testing.T) {
	stubS3(t, nil, nil)
	loadDefaultAWSConfig = func(context.Context, ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no config")
	}
	store, boxID := seedExportStore(t)
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	s := NewExportService(db, store, exportConfig(), forms.DefaultLinks())
	_, err := s.Export(context.Background(), alice, boxID)
	assert.ErrorContains(t, err, "error configuring storage")
}
