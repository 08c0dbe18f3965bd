package dataset

import (
	"log/slog"

	"github.com/helmick/nutriseek/internal/store"
)

// Sync walks the dataset directory and brings the record store up to date:
// new or changed seed files are parsed and their records upserted, and
// checksums of files removed from disk are forgotten. Records already
// ingested are never deleted — the dataset is additive seed input, and the
// store also holds records accepted from external candidates.
func Sync(st store.Store, provider Provider, logger *slog.Logger) error {
	metas, err := provider.List("")
	if err != nil {
		return err
	}

	checksums, err := st.AllFileChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := provider.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		records, skipped, err := Parse(data)
		if err != nil {
			logger.Warn("sync: parse failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if skipped > 0 {
			logger.Warn("sync: skipped invalid records", slog.String("path", m.Path), slog.Int("skipped", skipped))
		}

		ok := true
		for _, rec := range records {
			if err := st.Upsert(rec); err != nil {
				logger.Warn("sync: upsert failed",
					slog.String("path", m.Path),
					slog.String("name", rec.Name),
					slog.String("error", err.Error()))
				ok = false
			}
		}
		if ok {
			if err := st.SetFileChecksum(m.Path, m.Checksum); err != nil {
				logger.Warn("sync: checksum update failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: ingested", slog.String("path", m.Path), slog.Int("records", len(records)))
			}
		}
	}

	// Forget checksums of files no longer on disk.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := st.DeleteFileChecksum(p); err != nil {
				logger.Warn("sync: forget failed", slog.String("path", p), slog.String("error", err.Error()))
			}
		}
	}

	return nil
}
