package archiver

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"github.com/treasury-network/treasury-engine/internal/config"
	"github.com/treasury-network/treasury-engine/modules/treasury/internal/entity"
	"github.com/treasury-network/treasury-engine/pkg/logger"
	"github.com/treasury-network/treasury-engine/pkg/logger/slogx"
	"github.com/treasury-network/treasury-engine/pkg/parquetutils"
	"github.com/xitongsys/parquet-go/writer"
)

const parquetWriterConcurrency = 4

// Archiver exports finished run reports as parquet objects to S3, one
// object per run, keyed by year and quarter.
type Archiver struct {
	uploader *manager.Uploader
	bucket   string
	prefix   string
}

func New(ctx context.Context, conf config.Archiver) (*Archiver, error) {
	if conf.Bucket == "" {
		return nil, errors.New("archiver.bucket config is required if archiver is enabled")
	}

	sdkConfig, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(conf.Region))
	if err != nil {
		return nil, errors.Wrap(err, "can't load aws sdk config")
	}
	s3Client := s3.NewFromConfig(sdkConfig)

	return &Archiver{
		uploader: manager.NewUploader(s3Client),
		bucket:   conf.Bucket,
		prefix:   conf.Prefix,
	}, nil
}

// stageRow is the flattened parquet row, one per stage outcome. Amounts are
// unsigned on the ledger, so they are stored as UINT_64 to keep the full
// uint64 range intact.
type stageRow struct {
	RunId       int64  `parquet:"name=run_id, type=INT64"`
	RunStatus   string `parquet:"name=run_status, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Year        int32  `parquet:"name=year, type=INT32"`
	Quarter     int32  `parquet:"name=quarter, type=INT32"`
	StartedAt   int64  `parquet:"name=started_at, type=INT64, convertedtype=TIMESTAMP_MILLIS"`
	FinishedAt  int64  `parquet:"name=finished_at, type=INT64, convertedtype=TIMESTAMP_MILLIS"`
	Stage       string `parquet:"name=stage, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	StageStatus string `parquet:"name=stage_status, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Reason      string `parquet:"name=reason, type=BYTE_ARRAY, convertedtype=UTF8"`
	Amount      uint64 `parquet:"name=amount, type=INT64, convertedtype=UINT_64"`
	Fee         uint64 `parquet:"name=fee, type=INT64, convertedtype=UINT_64"`
	TxSignature string `parquet:"name=tx_signature, type=BYTE_ARRAY, convertedtype=UTF8"`
}

func stageRows(report *entity.RunReport) []stageRow {
	return lo.Map(report.Stages, func(stage entity.StageOutcome, _ int) stageRow {
		return stageRow{
			RunId:       report.Id,
			RunStatus:   string(report.Status),
			Year:        int32(report.Year),
			Quarter:     int32(report.Quarter),
			StartedAt:   report.StartedAt.UnixMilli(),
			FinishedAt:  report.FinishedAt.UnixMilli(),
			Stage:       string(stage.Stage),
			StageStatus: string(stage.Status),
			Reason:      stage.Reason,
			Amount:      stage.Amount,
			Fee:         stage.Fee,
			TxSignature: stage.TxSignature,
		}
	})
}

func (a *Archiver) ArchiveRun(ctx context.Context, report *entity.RunReport) error {
	rows := stageRows(report)

	buffer := parquetutils.NewBufferFile()
	pw, err := writer.NewParquetWriter(buffer, new(stageRow), parquetWriterConcurrency)
	if err != nil {
		return errors.Wrap(err, "can't create parquet writer")
	}
	for _, row := range rows {
		if err := pw.Write(row); err != nil {
			return errors.Wrap(err, "failed to write parquet row")
		}
	}
	if err := pw.WriteStop(); err != nil {
		return errors.Wrap(err, "failed to finalize parquet file")
	}

	key := a.objectKey(report)
	if _, err := a.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(buffer.Bytes()),
	}); err != nil {
		return errors.Wrapf(err, "can't upload run archive to s3 bucket %q key %q", a.bucket, key)
	}

	logger.InfoContext(ctx, "Archived run report",
		slogx.String("bucket", a.bucket),
		slogx.String("key", key),
		slogx.Int("stages", len(rows)),
	)
	return nil
}

func (a *Archiver) objectKey(report *entity.RunReport) string {
	key := fmt.Sprintf("%d/q%d/run_%d.parquet", report.Year, report.Quarter, report.Id)
	if a.prefix != "" {
		return a.prefix + "/" + key
	}
	return key
}
