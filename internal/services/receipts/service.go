package receipts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
)

// Service archives the query parameters of verified gateway callbacks as
// JSON objects. The archive is dispute evidence, not a system of record:
// callers treat failures as soft.
type Service struct {
	client *minio.Client
	bucket string
	now    func() time.Time
}

func NewService(client *minio.Client, bucket string) *Service {
	return &Service{
		client: client,
		bucket: bucket,
		now:    time.Now,
	}
}

type receiptDocument struct {
	TransactionRef string            `json:"transaction_ref"`
	ArchivedAt     time.Time         `json:"archived_at"`
	GatewayParams  map[string]string `json:"gateway_params"`
}

func (s *Service) Archive(ctx context.Context, txnRef string, params map[string]string) error {
	if s == nil || s.client == nil {
		return nil
	}
	txnRef = strings.TrimSpace(txnRef)
	if txnRef == "" {
		return fmt.Errorf("transaction ref is required")
	}

	doc, err := json.Marshal(receiptDocument{
		TransactionRef: txnRef,
		ArchivedAt:     s.now().UTC(),
		GatewayParams:  params,
	})
	if err != nil {
		return fmt.Errorf("marshal receipt: %w", err)
	}

	objectName := objectKey(txnRef, s.now().UTC())
	_, err = s.client.PutObject(ctx, s.bucket, objectName, bytes.NewReader(doc), int64(len(doc)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("put receipt object: %w", err)
	}

	return nil
}

func objectKey(txnRef string, at time.Time) string {
	return "receipts/" + at.Format("2006/01/02") + "/" + txnRef + ".json"
}
