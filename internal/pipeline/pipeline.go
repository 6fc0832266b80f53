// Package pipeline owns the lecture lifecycle: storing uploads, queueing
// transcription, generating notes and fanning events out to hooks.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"lecturenotes/internal/asr"
	"lecturenotes/internal/config"
	"lecturenotes/internal/hook"
	"lecturenotes/internal/lecture"
	"lecturenotes/internal/notes"
	"lecturenotes/internal/store"

	"github.com/sirupsen/logrus"
)

var (
	ErrNotFound     = errors.New("lecture not found")
	ErrNoTranscript = errors.New("transcript not available")
	ErrBusy         = errors.New("lecture is busy")
	ErrQueueFull    = errors.New("transcription queue full")
	ErrSaveAudio    = errors.New("failed to save audio")
	ErrNotesFailed  = errors.New("notes generation failed")
)

const (
	defaultAudioExt   = ".webm"
	storeWriteTimeout = 10 * time.Second
)

// NotesGenerator produces Markdown notes from a transcript.
type NotesGenerator interface {
	Generate(ctx context.Context, req notes.Request) (string, error)
}

// Firer delivers events to external hooks.
type Firer interface {
	Fire(ctx context.Context, ev hook.Event)
}

// Upload is a new lecture submitted by a client.
type Upload struct {
	Meta     lecture.Meta
	Filename string
	Audio    io.Reader
}

// Pipeline coordinates the store, the transcriber and the notes generator.
type Pipeline struct {
	cfg         *config.Config
	store       *store.Store
	transcriber asr.Transcriber
	notes       NotesGenerator
	hooks       Firer
	logger      *logrus.Logger

	jobs   chan string
	hookCh chan hook.Event

	inflightMu sync.Mutex
	inflight   map[string]struct{}

	Metrics Metrics
	events  *eventLog

	wg sync.WaitGroup
}

// New wires a pipeline. hooks may be nil.
func New(cfg *config.Config, st *store.Store, tr asr.Transcriber, gen NotesGenerator, hooks Firer, logger *logrus.Logger) *Pipeline {
	queue := cfg.Pipeline.QueueSize
	if queue < 1 {
		queue = 1
	}
	p := &Pipeline{
		cfg:         cfg,
		store:       st,
		transcriber: tr,
		notes:       gen,
		hooks:       hooks,
		logger:      logger,
		jobs:        make(chan string, queue),
		hookCh:      make(chan hook.Event, 16),
		inflight:    make(map[string]struct{}),
		events:      newEventLog(cfg.UI.StatusTail),
	}
	p.Metrics.started = time.Now()
	return p
}

// Start recovers interrupted lectures and launches the workers. Workers stop
// when ctx is cancelled; call Wait to block until they have exited.
func (p *Pipeline) Start(ctx context.Context) error {
	if err := os.MkdirAll(p.cfg.Paths.AudioDir, 0o755); err != nil {
		return fmt.Errorf("audio dir: %w", err)
	}
	n, err := p.store.ResetStuck(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		p.logger.Warnf("recovered %d interrupted lecture(s)", n)
	}

	workers := p.cfg.Pipeline.Workers
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			p.transcribeWorker(ctx)
		}()
	}
	if p.hooks != nil {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			p.hookWorker(ctx)
		}()
	}

	queued, err := p.Requeue(ctx)
	if err != nil {
		return err
	}
	if queued > 0 {
		p.logger.Infof("requeued %d lecture(s) awaiting transcription", queued)
	}
	return nil
}

// Wait blocks until every worker started by Start has returned.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

// Store exposes the underlying lecture store for read paths.
func (p *Pipeline) Store() *store.Store {
	return p.store
}

// QueueDepth returns the number of lectures waiting for a transcription worker.
func (p *Pipeline) QueueDepth() int {
	return len(p.jobs)
}

// Submit stores a new lecture with its audio and queues it for transcription.
func (p *Pipeline) Submit(ctx context.Context, up Upload) (*lecture.Lecture, error) {
	l, err := p.store.Create(ctx, up.Meta)
	if err != nil {
		return nil, err
	}
	p.Metrics.uploads.Add(1)
	p.record(l, "uploaded", "")

	path := filepath.Join(p.cfg.Paths.AudioDir, l.ID+audioExt(up.Filename))
	if err := saveAudio(path, up.Audio); err != nil {
		msg := fmt.Sprintf("Failed to save audio: %v", err)
		p.fail(ctx, l, msg)
		return nil, fmt.Errorf("%w: %v", ErrSaveAudio, err)
	}
	if err := p.store.SetAudioPath(ctx, l.ID, path); err != nil {
		_ = os.Remove(path)
		p.fail(ctx, l, fmt.Sprintf("Failed to save audio: %v", err))
		return nil, fmt.Errorf("%w: %v", ErrSaveAudio, err)
	}

	select {
	case p.jobs <- l.ID:
	default:
		p.Metrics.queueDropped.Add(1)
		p.logger.Warnf("transcription queue full, rejecting %s", l.ID)
		p.fail(ctx, l, "Transcription queue full")
		return nil, ErrQueueFull
	}
	p.logger.WithField("lecture", l.ID).Infof("queued %q for transcription", l.Title)
	return p.store.Get(ctx, l.ID)
}

// Requeue enqueues lectures that were uploaded but never transcribed.
func (p *Pipeline) Requeue(ctx context.Context) (int, error) {
	pending, err := p.store.ListByStatus(ctx, lecture.StatusUploaded)
	if err != nil {
		return 0, err
	}
	queued := 0
	for _, l := range pending {
		if l.AudioFilePath == "" {
			continue
		}
		select {
		case p.jobs <- l.ID:
			queued++
		default:
			p.logger.Warnf("queue full while requeueing; %d lecture(s) left for the next start", len(pending)-queued)
			return queued, nil
		}
	}
	return queued, nil
}

func (p *Pipeline) transcribeWorker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case id := <-p.jobs:
			p.transcribe(ctx, id)
		}
	}
}

func (p *Pipeline) transcribe(ctx context.Context, id string) {
	log := p.logger.WithField("lecture", id)
	l, err := p.store.Get(ctx, id)
	if err != nil {
		log.Errorf("load lecture: %v", err)
		return
	}
	if l == nil {
		log.Debug("lecture deleted before transcription")
		return
	}
	if err := p.store.SetStatus(ctx, id, lecture.StatusTranscribing, ""); err != nil {
		log.Warnf("set transcribing: %v", err)
		return
	}
	p.record(l, "transcribing", "")

	res, err := p.transcriber.Transcribe(ctx, l.AudioFilePath)
	if err != nil {
		if ctx.Err() != nil {
			// left TRANSCRIBING; ResetStuck rewinds it on the next start
			return
		}
		p.Metrics.transcribeFailed.Add(1)
		log.Errorf("transcription failed: %v", err)
		p.fail(ctx, l, fmt.Sprintf("Transcription failed: %v", err))
		return
	}
	if err := p.store.SetTranscript(ctx, id, res.Text, res.Language, res.Duration); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Debug("lecture deleted during transcription")
			return
		}
		log.Errorf("store transcript: %v", err)
		return
	}
	p.Metrics.transcribed.Add(1)
	updated, err := p.store.Get(ctx, id)
	if err != nil || updated == nil {
		return
	}
	p.record(updated, "transcribed", fmt.Sprintf("%.0fs, %s", res.Duration, res.Language))
	p.fire(config.EventTranscribed, updated)
}

// GenerateNotes runs the notes generator for a transcribed lecture and
// returns the updated lecture.
func (p *Pipeline) GenerateNotes(ctx context.Context, id string) (*lecture.Lecture, error) {
	l, err := p.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, ErrNotFound
	}
	if strings.TrimSpace(l.Transcript()) == "" {
		return nil, ErrNoTranscript
	}
	if l.Status.Busy() || !p.claim(id) {
		return nil, ErrBusy
	}
	defer p.release(id)

	if err := p.store.SetStatus(ctx, id, lecture.StatusGeneratingNotes, ""); err != nil {
		return nil, err
	}
	p.record(l, "generating notes", "")

	// Generation outlives the HTTP request.
	genCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.notesTimeout())
	defer cancel()
	text, err := p.notes.Generate(genCtx, notes.Request{
		Title:       l.Title,
		Course:      lecture.Deref(l.Course),
		Lecturer:    lecture.Deref(l.Lecturer),
		LectureDate: lecture.Deref(l.LectureDate),
		Transcript:  l.Transcript(),
	})
	// genCtx may already be past its deadline here.
	writeCtx, cancelWrite := context.WithTimeout(context.WithoutCancel(ctx), storeWriteTimeout)
	defer cancelWrite()
	if err != nil {
		p.Metrics.notesFailed.Add(1)
		p.logger.WithField("lecture", id).Errorf("notes generation failed: %v", err)
		p.fail(writeCtx, l, fmt.Sprintf("Notes generation failed: %v", err))
		return nil, fmt.Errorf("%w: %v", ErrNotesFailed, err)
	}
	if err := p.store.SetNotes(writeCtx, id, text); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	p.Metrics.notes.Add(1)
	updated, err := p.store.Get(writeCtx, id)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrNotFound
	}
	p.record(updated, "completed", "")
	p.fire(config.EventCompleted, updated)
	return updated, nil
}

// Delete removes a lecture and its audio file.
func (p *Pipeline) Delete(ctx context.Context, id string) error {
	l, err := p.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if l == nil {
		return ErrNotFound
	}
	if l.Status.Busy() {
		return ErrBusy
	}
	if err := p.store.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if l.AudioFilePath != "" {
		if err := os.Remove(l.AudioFilePath); err != nil && !errors.Is(err, os.ErrNotExist) {
			p.logger.Warnf("remove audio %s: %v", l.AudioFilePath, err)
		}
	}
	p.Metrics.deletes.Add(1)
	p.record(l, "deleted", "")
	return nil
}

func (p *Pipeline) notesTimeout() time.Duration {
	if p.cfg.LLM.TimeoutSec > 0 {
		return time.Duration(p.cfg.LLM.TimeoutSec) * time.Second
	}
	return 10 * time.Minute
}

func (p *Pipeline) claim(id string) bool {
	p.inflightMu.Lock()
	defer p.inflightMu.Unlock()
	if _, ok := p.inflight[id]; ok {
		return false
	}
	p.inflight[id] = struct{}{}
	return true
}

func (p *Pipeline) release(id string) {
	p.inflightMu.Lock()
	delete(p.inflight, id)
	p.inflightMu.Unlock()
}

// fail moves l to ERROR with msg and notifies hooks.
func (p *Pipeline) fail(ctx context.Context, l *lecture.Lecture, msg string) {
	if err := p.store.SetStatus(ctx, l.ID, lecture.StatusError, msg); err != nil {
		p.logger.Warnf("mark %s as failed: %v", l.ID, err)
		return
	}
	failed := *l
	failed.Status = lecture.StatusError
	failed.ErrorMessage = lecture.Ptr(msg)
	p.record(&failed, "error", msg)
	p.fire(config.EventError, &failed)
}

func (p *Pipeline) fire(kind string, l *lecture.Lecture) {
	if p.hooks == nil || len(hook.Matching(p.cfg, kind)) == 0 {
		return
	}
	select {
	case p.hookCh <- hook.Event{Kind: kind, Lecture: l, Timestamp: time.Now()}:
	default:
		p.Metrics.hooksDropped.Add(1)
		p.logger.Warn("hook queue full, dropping event")
	}
}

func (p *Pipeline) hookWorker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-p.hookCh:
			p.hooks.Fire(ctx, ev)
			p.Metrics.hooksSent.Add(1)
		}
	}
}

var extRE = regexp.MustCompile(`^\.[a-z0-9]{1,8}$`)

// audioExt keeps the upload's extension when it looks sane.
func audioExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if !extRE.MatchString(ext) {
		return defaultAudioExt
	}
	return ext
}

func saveAudio(path string, r io.Reader) error {
	if r == nil {
		return errors.New("no audio data")
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	return f.Close()
}
