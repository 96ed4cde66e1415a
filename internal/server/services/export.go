package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/feedbox/internal/dbx"
	"github.com/dmitrijs2005/feedbox/internal/server/auth"
	"github.com/dmitrijs2005/feedbox/internal/server/config"
	"github.com/dmitrijs2005/feedbox/internal/server/forms"
	"github.com/dmitrijs2005/feedbox/internal/server/models"
	"github.com/dmitrijs2005/feedbox/internal/server/repositories/boxes"
	"github.com/dmitrijs2005/feedbox/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// Export describes an uploaded export document.
type Export struct {
	Key             string
	URL             string
	SubmissionCount int
	ExpiresAt       time.Time
}

type exportDocument struct {
	ExportedAt  time.Time            `json:"exported_at"`
	Box         exportBox            `json:"box"`
	Submissions []exportedSubmission `json:"submissions"`
}

type exportBox struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	FormID      string    `json:"form_id"`
	FormURL     string    `json:"form_url"`
	QRCodeURL   string    `json:"qr_code_url"`
	CreatedAt   time.Time `json:"created_at"`
}

type exportedSubmission struct {
	ID           string         `json:"id"`
	SubmissionID string         `json:"submission_id"`
	Data         models.Payload `json:"data"`
	CreatedAt    time.Time      `json:"created_at"`
}

// ExportService writes a box and its submissions to object storage as JSON
// and hands back a time-limited download link.
type ExportService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *config.Config
	links       forms.Links
	now         func() time.Time
}

func NewExportService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, links forms.Links) *ExportService {
	return &ExportService{db: db, repomanager: m, config: cfg, links: links, now: time.Now}
}

func exportKey(userID, boxID string) string {
	return fmt.Sprintf("exports/%s/%s/%s.json", userID, boxID, uuid.NewString())
}

func (s *ExportService) getClient(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if s.config.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		}
		o.UsePathStyle = true
	}), nil
}

// Export applies the same ownership rule as reading the box.
func (s *ExportService) Export(ctx context.Context, owner auth.Identity, boxID string) (*Export, error) {
	var (
		box  *models.FeedbackBox
		subs []*models.Submission
	)

	// One read-only snapshot so the document never mixes states.
	err := dbx.WithTx(ctx, s.db, dbx.ReadOnly, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		box, err = authorizeBoxAccess(ctx, s.repomanager.Boxes(tx), owner, boxID, boxes.LockNone)
		if err != nil {
			return err
		}
		subs, err = s.repomanager.Submissions(tx).ListByBox(ctx, box.ID)
		if err != nil {
			return fmt.Errorf("error listing submissions: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	decorateBox(s.links, box)
	body, err := json.Marshal(s.buildDocument(box, subs))
	if err != nil {
		return nil, fmt.Errorf("error encoding export: %w", err)
	}

	client, err := s.getClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("error configuring storage: %w", err)
	}

	bucket := s.config.S3Bucket
	key := exportKey(owner.UserID, box.ID)

	if _, err := putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	}); err != nil {
		return nil, fmt.Errorf("error uploading export: %w", err)
	}

	validity := s.config.ExportURLValidity
	if validity <= 0 {
		validity = 15 * time.Minute
	}

	req, err := presignGetObject(newS3PresignClient(client), ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(validity))
	if err != nil {
		return nil, fmt.Errorf("error presigning export: %w", err)
	}

	return &Export{
		Key:             key,
		URL:             req.URL,
		SubmissionCount: len(subs),
		ExpiresAt:       s.now().Add(validity),
	}, nil
}

func (s *ExportService) buildDocument(box *models.FeedbackBox, subs []*models.Submission) exportDocument {
	doc := exportDocument{
		ExportedAt: s.now().UTC(),
		Box: exportBox{
			ID:          box.ID,
			Name:        box.Name,
			Description: box.Description,
			FormID:      box.FormID,
			FormURL:     box.FormURL,
			QRCodeURL:   box.QRCodeURL,
			CreatedAt:   box.CreatedAt,
		},
		Submissions: make([]exportedSubmission, 0, len(subs)),
	}
	for _, sub := range subs {
		doc.Submissions = append(doc.Submissions, exportedSubmission{
			ID:           sub.ID,
			SubmissionID: sub.SubmissionID,
			Data:         sub.Data,
			CreatedAt:    sub.CreatedAt,
		})
	}
	return doc
}
