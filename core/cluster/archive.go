package cluster

import (
	"context"
	"log/slog"
	"time"

	"github.com/codewandler/actr-go/core/actor"
	"github.com/codewandler/actr-go/ports/kv"
)

// ArchivedLeftovers is the record written to the archive per topic.
type ArchivedLeftovers struct {
	Cluster  string    `json:"cluster"`
	Topic    string    `json:"topic"`
	At       time.Time `json:"at"`
	Messages []any     `json:"messages"`
}

type archivedRun struct {
	Topic string `json:"topic"`
	Actor string `json:"actor"`
}

// ArchiveKey is the key the leftovers of topic are stored under.
func ArchiveKey(cluster string, topic actor.Topic) string {
	return "leftovers/" + cluster + "/" + string(topic)
}

func (c *Cluster) archiveLeftovers(ctx context.Context, leftovers Leftovers) {
	if c.archive == nil {
		return
	}

	ctx = context.WithoutCancel(ctx)
	now := time.Now().UTC()

	for topic, msgs := range leftovers {
		if len(msgs) == 0 {
			continue
		}

		rec := ArchivedLeftovers{Cluster: c.name, Topic: string(topic), At: now, Messages: msgs}
		if topic == PoolBacklogKey {
			rec.Messages = make([]any, 0, len(msgs))
			for _, m := range msgs {
				if n, ok := m.(actor.Node); ok {
					rec.Messages = append(rec.Messages, archivedRun{Topic: string(n.Topic()), Actor: n.ControlBlock().ID()})
				}
			}
		}

		key := ArchiveKey(c.name, topic)
		if err := kv.Put(ctx, c.archive, key, rec, kv.PutOptions{}); err != nil {
			c.log.Error("archive leftovers", slog.String("key", key), slog.Any("error", err))
			continue
		}
		c.log.Debug("archived leftovers", slog.String("key", key), slog.Int("count", len(msgs)))
	}
}
