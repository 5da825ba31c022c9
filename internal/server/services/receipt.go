package services

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	sc "github.com/terangapay/terangapay/internal/server/config"
)

const receiptURLValidity = 15 * time.Minute

// ReceiptService hands out short-lived presigned GET URLs for transaction
// receipt objects stored in an S3-compatible backend. Receipt rendering
// itself happens out-of-band; the key layout is
// receipts/<yyyy>/<mm>/<dd>/<reference>.pdf.
type ReceiptService struct {
	config *sc.Config
}

func NewReceiptService(config *sc.Config) *ReceiptService {
	return &ReceiptService{config: config}
}

func (s *ReceiptService) getPresignClient() (*s3.PresignClient, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
	})

	return s3.NewPresignClient(client), nil
}

// StorageKey derives the object key from a journal reference, whose first
// eight digits after the "OM" prefix carry the creation date.
func StorageKey(reference string) string {
	if len(reference) >= 10 {
		date := reference[2:10]
		return fmt.Sprintf("receipts/%s/%s/%s/%s.pdf", date[:4], date[4:6], date[6:8], reference)
	}
	return "receipts/" + reference + ".pdf"
}

// URLFor presigns a GET for the receipt of the given reference.
func (s *ReceiptService) URLFor(ctx context.Context, reference string) (string, error) {
	presignClient, err := s.getPresignClient()
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket
	key := StorageKey(reference)

	req, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(receiptURLValidity))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}
