package search

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"
	"github.com/google/uuid"
	"github.com/hackorbit/team-service/internal/metrics"
	"github.com/hackorbit/team-service/internal/models"
	"gorm.io/gorm"
)

// Worker drains the outbox into Elasticsearch so the platform's search
// pages see new teams and closed hackathons shortly after formation.
type Worker struct {
	DB       *gorm.DB
	ES       *es.Client
	Interval time.Duration
}

func (w *Worker) Run(ctx context.Context) {
	if err := EnsureIndexes(ctx, w.ES); err != nil {
		log.Fatalf("ensure indexes: %v", err)
	}
	interval := w.Interval
	if interval == 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.processOnce(ctx); err != nil {
				log.Printf("sync worker error: %v", err)
			}
		}
	}
}

func (w *Worker) processOnce(ctx context.Context) error {
	batch, err := FetchOutboxBatch(ctx, w.DB, 200)
	if err != nil {
		return err
	}
	if len(batch.Events) == 0 {
		return nil
	}

	bi, _ := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Client: w.ES, Index: "", FlushBytes: 5 << 20, NumWorkers: 2,
	})

	for _, e := range batch.Events {
		if err := w.applyEvent(ctx, bi, e); err != nil {
			// Put back to DLQ (already marked processed to avoid infinite loop)
			metrics.SyncFailed.Inc()
			PutDLQ(w.DB, e, err.Error())
			log.Printf("DLQ outbox_id=%d: %v", e.ID, err)
			continue
		}
		metrics.SyncProcessed.Inc()
	}

	if err := bi.Close(ctx); err != nil {
		return err
	}
	stats := bi.Stats()
	log.Printf("bulk ok=%d failed=%d", stats.NumFlushed, stats.NumFailed)
	return nil
}

func (w *Worker) ApplyEvent(ctx context.Context, bi esutil.BulkIndexer, e models.Outbox) error {
	return w.applyEvent(ctx, bi, e)
}

func (w *Worker) applyEvent(ctx context.Context, bi esutil.BulkIndexer, e models.Outbox) error {
	switch e.EntityType {
	case "user":
		var u models.User
		if e.Op == "DELETE" {
			return w.add(bi, IdxUsers, e.EntityID.String(), e.ID, "delete", nil)
		}
		if err := w.DB.First(&u, "id = ?", e.EntityID).Error; err != nil {
			return err
		}
		doc, err := BuildUserDoc(u)
		if err != nil {
			return err
		}
		return w.add(bi, IdxUsers, e.EntityID.String(), e.ID, "index", doc)

	case "hackathon":
		var h models.Hackathon
		if e.Op == "DELETE" {
			return w.add(bi, IdxHackathons, e.EntityID.String(), e.ID, "delete", nil)
		}
		if err := w.DB.First(&h, "id = ?", e.EntityID).Error; err != nil {
			return err
		}
		doc, err := BuildHackathonDoc(h)
		if err != nil {
			return err
		}
		return w.add(bi, IdxHackathons, e.EntityID.String(), e.ID, "index", doc)

	case "team":
		var t models.Team
		if e.Op == "DELETE" {
			return w.add(bi, IdxTeams, e.EntityID.String(), e.ID, "delete", nil)
		}
		if err := w.DB.Preload("Members").First(&t, "id = ?", e.EntityID).Error; err != nil {
			return err
		}
		doc, err := BuildTeamDoc(t)
		if err != nil {
			return err
		}
		return w.add(bi, IdxTeams, e.EntityID.String(), e.ID, "index", doc)
	}
	return fmt.Errorf("unknown entity_type=%s", e.EntityType)
}

func (w *Worker) add(bi esutil.BulkIndexer, index, docID string, outboxID int64, action string, body []byte) error {
	item := esutil.BulkIndexerItem{
		Action:     action,
		DocumentID: docID,
		Index:      index,
		Body:       nil,
		OnSuccess: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem) {
			log.Printf("✅ synced %s id=%s", index, docID)
		},
		OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
			msg := ""
			switch {
			case err != nil:
				msg = err.Error()
			case res.Error.Reason != "":
				msg = fmt.Sprintf("%s: %s", res.Error.Type, res.Error.Reason)
			default:
				msg = fmt.Sprintf("status=%d failed to index", res.Status)
			}

			ob := models.Outbox{
				ID:         outboxID,
				EntityType: indexToEntity(index),
				EntityID:   uuid.MustParse(docID),
				Op:         actionToOp(action),
				Payload:    nil,
			}
			PutDLQ(w.DB, ob, msg)
			log.Printf("💀 sync DLQ created for outbox_id=%d index=%s id=%s reason=%s", outboxID, index, docID, msg)
		},
	}

	if len(body) > 0 {
		item.Body = bytes.NewReader(body)
	}
	return bi.Add(context.Background(), item)
}

// actionToOp maps the bulk-indexer action back to the outbox op, so a
// failed delete is retried as a delete and not re-indexed.
func actionToOp(action string) string {
	if action == "delete" {
		return "DELETE"
	}
	return "UPSERT"
}

func indexToEntity(index string) string {
	switch index {
	case IdxUsers:
		return "user"
	case IdxTeams:
		return "team"
	case IdxHackathons:
		return "hackathon"
	default:
		return "unknown"
	}
}
