// internal/cache/journal.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// MaxJournalLen caps each match's frame stream. A two-minute match at 60 Hz
// with an input every frame on both seats stays well under it. The start
// record lives in its own uncapped stream so trimming never loses it.
const MaxJournalLen = 50000

// KindStart marks the record a replay begins from.
const KindStart = "start"

// MatchRecord is one journal entry: a seat's frame, or a match lifecycle
// marker when Seat is -1.
type MatchRecord struct {
	MatchID   uuid.UUID              `json:"matchId"`
	Index     int                    `json:"index"`
	Tick      uint64                 `json:"tick"`
	Seat      int                    `json:"seat"`
	Kind      string                 `json:"kind"`
	Payload   map[string]interface{} `json:"payload"`
	Timestamp int64                  `json:"ts"`
}

// Journal appends match records to a redis stream per match.
type Journal struct {
	Rdb *redis.Client
}

// Connect opens a client for addr and pings it.
func Connect(ctx context.Context, addr string) (*Journal, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return &Journal{Rdb: rdb}, nil
}

// Close releases the underlying client.
func (j *Journal) Close() error { return j.Rdb.Close() }

// StreamKey returns the redis stream holding a match's journal.
func StreamKey(matchID uuid.UUID) string {
	return "match:" + matchID.String() + ":journal"
}

// StartKey returns the redis stream holding a match's start record.
func StartKey(matchID uuid.UUID) string {
	return "match:" + matchID.String() + ":start"
}

// xaddArgs routes rec to its stream. Only the frame stream is capped.
func xaddArgs(rec MatchRecord) (*redis.XAddArgs, error) {
	values, err := encodeRecord(rec)
	if err != nil {
		return nil, err
	}
	if rec.Kind == KindStart {
		return &redis.XAddArgs{Stream: StartKey(rec.MatchID), Values: values}, nil
	}
	return &redis.XAddArgs{
		Stream: StreamKey(rec.MatchID),
		MaxLen: MaxJournalLen,
		Approx: true,
		Values: values,
	}, nil
}

// Append writes rec to its match stream.
func (j *Journal) Append(ctx context.Context, rec MatchRecord) error {
	args, err := xaddArgs(rec)
	if err != nil {
		return err
	}
	return j.Rdb.XAdd(ctx, args).Err()
}

// Read returns every record of a match ordered by Index.
func (j *Journal) Read(ctx context.Context, matchID uuid.UUID) ([]MatchRecord, error) {
	var msgs []redis.XMessage
	for _, key := range []string{StartKey(matchID), StreamKey(matchID)} {
		part, err := j.Rdb.XRange(ctx, key, "-", "+").Result()
		if err != nil {
			return nil, fmt.Errorf("read journal %s: %w", matchID, err)
		}
		msgs = append(msgs, part...)
	}
	return decodeMessages(matchID, msgs)
}

func decodeMessages(matchID uuid.UUID, msgs []redis.XMessage) ([]MatchRecord, error) {
	out := make([]MatchRecord, 0, len(msgs))
	for _, m := range msgs {
		rec, err := decodeRecord(matchID, m.Values)
		if err != nil {
			return nil, fmt.Errorf("journal entry %s: %w", m.ID, err)
		}
		out = append(out, rec)
	}
	// Appends are published concurrently; Index restores the match order.
	sort.Slice(out, func(a, b int) bool { return out[a].Index < out[b].Index })
	return out, nil
}

func encodeRecord(rec MatchRecord) (map[string]interface{}, error) {
	payload, err := json.Marshal(rec.Payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", rec.Kind, err)
	}
	return map[string]interface{}{
		"index":   rec.Index,
		"tick":    rec.Tick,
		"seat":    rec.Seat,
		"kind":    rec.Kind,
		"payload": string(payload),
		"ts":      rec.Timestamp,
	}, nil
}

// decodeRecord parses stream values. Redis hands every field back as a string.
func decodeRecord(matchID uuid.UUID, values map[string]interface{}) (MatchRecord, error) {
	rec := MatchRecord{MatchID: matchID}
	str := func(k string) string {
		s, _ := values[k].(string)
		return s
	}
	var err error
	if rec.Index, err = strconv.Atoi(str("index")); err != nil {
		return rec, fmt.Errorf("index: %w", err)
	}
	if rec.Tick, err = strconv.ParseUint(str("tick"), 10, 64); err != nil {
		return rec, fmt.Errorf("tick: %w", err)
	}
	if rec.Seat, err = strconv.Atoi(str("seat")); err != nil {
		return rec, fmt.Errorf("seat: %w", err)
	}
	if rec.Timestamp, err = strconv.ParseInt(str("ts"), 10, 64); err != nil {
		return rec, fmt.Errorf("ts: %w", err)
	}
	rec.Kind = str("kind")
	if p := str("payload"); p != "" {
		if err := json.Unmarshal([]byte(p), &rec.Payload); err != nil {
			return rec, fmt.Errorf("payload: %w", err)
		}
	}
	return rec, nil
}
