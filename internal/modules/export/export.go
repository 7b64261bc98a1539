package export

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/echomeet/core/internal/modules/meetings"
	"go.uber.org/zap"
)

// Engine packages meetings into portable zip archives and reconstructs
// them on the way back in.
type Engine struct {
	meetings *meetings.Service
	log      *zap.Logger
}

func NewEngine(svc *meetings.Service, log *zap.Logger) *Engine {
	return &Engine{meetings: svc, log: log}
}

// ExportMeeting builds a single-meeting archive with all entries at the
// container root. Returns ErrNotFound when the id does not exist.
func (e *Engine) ExportMeeting(id string) (*bytes.Buffer, string, error) {
	m, err := e.meetings.Get(id)
	if err != nil {
		return nil, "", err
	}
	if m == nil {
		return nil, "", meetings.ErrNotFound
	}

	buf := &bytes.Buffer{}
	w := zip.NewWriter(buf)
	if err := e.writeMeetingEntries(w, m, ""); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return buf, folderName(m) + ".zip", nil
}

// ExportAll builds a bulk archive with one folder per meeting plus a
// top-level readme. Fails with ErrNothingToExport on an empty store.
// progress, when non-nil, receives fractional completion in 0..100.
func (e *Engine) ExportAll(progress func(float64)) (*bytes.Buffer, string, error) {
	all, err := e.meetings.GetAll()
	if err != nil {
		return nil, "", err
	}
	if len(all) == 0 {
		return nil, "", ErrNothingToExport
	}

	report := func(pct float64) {
		if progress != nil {
			progress(pct)
		}
	}

	now := time.Now()
	buf := &bytes.Buffer{}
	w := zip.NewWriter(buf)

	for i, m := range all {
		if err := e.writeMeetingEntries(w, m, folderName(m)+"/"); err != nil {
			return nil, "", fmt.Errorf("export %s: %w", m.ID, err)
		}
		report(float64(i+1) / float64(len(all)) * 90)
	}

	readme, err := w.Create(readmeFileName)
	if err != nil {
		return nil, "", err
	}
	if _, err := readme.Write([]byte(renderBulkReadme(len(all), now))); err != nil {
		return nil, "", err
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	report(100)

	filename := fmt.Sprintf("meetings-export-%s.zip", now.Format("2006-01-02T15-04-05"))
	return buf, filename, nil
}

func (e *Engine) writeMeetingEntries(w *zip.Writer, m *meetings.Meeting, prefix string) error {
	if !m.Archived && len(m.Audio) > 0 {
		f, err := w.Create(prefix + audioFileName)
		if err != nil {
			return err
		}
		if _, err := f.Write(m.Audio); err != nil {
			return err
		}
	}

	f, err := w.Create(prefix + transcriptFileName)
	if err != nil {
		return err
	}
	if _, err := f.Write([]byte(cleanTranscript(m.Transcript))); err != nil {
		return err
	}

	if m.Summary != nil {
		md := renderSummaryMarkdown(m)
		f, err := w.Create(prefix + summaryMDFileName)
		if err != nil {
			return err
		}
		if _, err := f.Write([]byte(md)); err != nil {
			return err
		}

		html, err := renderSummaryHTML(md)
		if err != nil {
			e.log.Warn("summary html render failed", zap.String("meeting", m.ID), zap.Error(err))
		} else {
			f, err := w.Create(prefix + summaryHTMLFileName)
			if err != nil {
				return err
			}
			if _, err := f.Write([]byte(html)); err != nil {
				return err
			}
		}
	}

	meta := metadataFromMeeting(m)
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	f, err = w.Create(prefix + metadataFileName)
	if err != nil {
		return err
	}
	_, err = f.Write(data)
	return err
}
