// Package dump persists the memory tier to disk and restores it on start.
// The format is a stream of length-prefixed JSON records, optionally gzipped
// and CRC32-guarded per record, written to a temp file and renamed so a crash
// mid-dump never clobbers the previous snapshot.
package dump

import (
	"bufio"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog/log"

	"github.com/strata-cache/go-strata-cache/config"
	"github.com/strata-cache/go-strata-cache/internal/item"
	"github.com/strata-cache/go-strata-cache/internal/memory"
	"github.com/strata-cache/go-strata-cache/model"
)

var ErrDumpNotEnabled = errors.New("persistence mode is not enabled")

type record struct {
	Key        string         `json:"k"`
	Payload    []byte         `json:"p"`
	CreatedAt  int64          `json:"c"`
	TouchedAt  int64          `json:"t"`
	ExpiresAt  int64          `json:"e"`
	Hits       int64          `json:"h"`
	Priority   model.Priority `json:"pr"`
	Tags       []string       `json:"tg,omitempty"`
	Compressed bool           `json:"z,omitempty"`
}

type Dumper interface {
	Dump(ctx context.Context) error
	Load(ctx context.Context) error
}

type Dump struct {
	cfg *config.PersistenceCfg
	mem *memory.Tier
}

func New(cfg *config.PersistenceCfg, mem *memory.Tier) *Dump {
	return &Dump{cfg: cfg, mem: mem}
}

// Dump snapshots every live entry. Entries written out keep their stored
// payload representation and their access metadata, so a restored tier
// behaves as if the process never restarted.
func (d *Dump) Dump(ctx context.Context) error {
	start := time.Now()
	if !d.cfg.Enabled() {
		return ErrDumpNotEnabled
	}
	if err := os.MkdirAll(d.cfg.Dir, 0o755); err != nil {
		return fmt.Errorf("create dump dir: %w", err)
	}

	name := d.fileName()
	tmp := name + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create dump file: %w", err)
	}

	var (
		writer io.Writer = f
		gw     *gzip.Writer
	)
	if d.cfg.Gzip {
		gw = gzip.NewWriter(f)
		writer = gw
	}
	bw := bufio.NewWriterSize(writer, 512*1024)

	var written, failures int
	d.mem.Walk(func(e *item.Entry) bool {
		select {
		case <-ctx.Done():
			return false
		default:
		}
		data, err := json.Marshal(record{
			Key:        e.KeyString(),
			Payload:    e.Payload(),
			CreatedAt:  e.CreatedAt(),
			TouchedAt:  e.TouchedAt(),
			ExpiresAt:  e.ExpiresAt(),
			Hits:       e.Hits(),
			Priority:   e.Priority(),
			Tags:       e.Tags(),
			Compressed: e.Compressed(),
		})
		if err != nil {
			failures++
			return true
		}
		var crc uint32
		if d.cfg.Crc32Control {
			crc = crc32.ChecksumIEEE(data)
		}

		var lenBuf [8]byte
		binary.LittleEndian.PutUint32(lenBuf[0:4], uint32(len(data)))
		binary.LittleEndian.PutUint32(lenBuf[4:8], crc)
		if _, err = bw.Write(lenBuf[:]); err != nil {
			failures++
			return true
		}
		if _, err = bw.Write(data); err != nil {
			failures++
			return true
		}
		written++
		return true
	})

	if err = bw.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("flush dump file: %w", err)
	}
	if gw != nil {
		if err = gw.Close(); err != nil {
			_ = f.Close()
			return fmt.Errorf("close gzip writer: %w", err)
		}
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("close dump file: %w", err)
	}
	if err = os.Rename(tmp, name); err != nil {
		return fmt.Errorf("publish dump file: %w", err)
	}

	log.Info().
		Int("written", written).
		Int("fails", failures).
		Str("file", name).
		Str("elapsed", time.Since(start).String()).
		Msg("dumping finished")

	if failures > 0 {
		return fmt.Errorf("dump finished with %d errors", failures)
	}
	return nil
}

// Load restores the latest snapshot into the memory tier. Already-expired
// records are skipped; with Crc32Control enabled a corrupted record is
// skipped rather than failing the load.
func (d *Dump) Load(ctx context.Context) error {
	start := time.Now()
	if !d.cfg.Enabled() {
		return ErrDumpNotEnabled
	}

	name := d.fileName()
	f, err := os.Open(name)
	if err != nil {
		return fmt.Errorf("open dump file: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(name, ".gz") {
		gzr, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("open gzip reader: %w", err)
		}
		defer gzr.Close()
		reader = gzr
	}

	now := time.Now().UnixNano()
	br := bufio.NewReaderSize(reader, 512*1024)
	var metaBuf [8]byte
	var restored, failures int

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if _, err := io.ReadFull(br, metaBuf[:]); err == io.EOF {
			break
		} else if err != nil {
			log.Err(err).Str("file", name).Msg("[load] read meta error")
			failures++
			break
		}

		sz := binary.LittleEndian.Uint32(metaBuf[0:4])
		expCRC := binary.LittleEndian.Uint32(metaBuf[4:8])
		buf := make([]byte, sz)
		if _, err := io.ReadFull(br, buf); err != nil {
			log.Err(err).Str("file", name).Msg("[load] read record error")
			failures++
			break
		}
		if d.cfg.Crc32Control && crc32.ChecksumIEEE(buf) != expCRC {
			log.Error().Str("file", name).Msg("[load] crc mismatch")
			failures++
			continue
		}

		var r record
		if err := json.Unmarshal(buf, &r); err != nil {
			log.Err(err).Str("file", name).Msg("[load] record decode error")
			failures++
			continue
		}
		if r.ExpiresAt != 0 && now > r.ExpiresAt {
			continue
		}

		e := item.Restore(r.Key, r.Payload, r.CreatedAt, r.TouchedAt, r.ExpiresAt, r.Hits, r.Priority, r.Tags, r.Compressed)
		if err := d.mem.Set(e); err != nil {
			failures++
			continue
		}
		restored++
	}

	log.Info().
		Int("restored", restored).
		Int("fails", failures).
		Str("file", name).
		Str("elapsed", time.Since(start).String()).
		Msg("restoring dump")

	if failures > 0 {
		return fmt.Errorf("load finished with %d errors", failures)
	}
	return nil
}

func (d *Dump) fileName() string {
	ext := ".dump"
	if d.cfg.Gzip {
		ext += ".gz"
	}
	return filepath.Join(d.cfg.Dir, d.cfg.Name+ext)
}
