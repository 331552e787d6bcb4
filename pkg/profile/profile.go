// Package profile implements the profile download engine (C5, §4.5):
// the state machine that resolves a survey's interval-record file,
// locates a time window within it via FILE_SEARCH, and pulls it out in
// adaptively-sized FILE_READ chunks.
package profile

import (
	"context"
	"math"

	log "github.com/sirupsen/logrus"

	"github.com/meterlink/edmidrv/pkg/command"
	"github.com/meterlink/edmidrv/pkg/proto"
	"github.com/meterlink/edmidrv/pkg/registers"
	"github.com/meterlink/edmidrv/pkg/session"
	"github.com/meterlink/edmidrv/pkg/wire"
)

// ProgressFunc is called after every FILE_READ chunk with the number of
// records read so far and the total the engine intends to read (§4.5
// step 8).
type ProgressFunc func(recordsRead, total int32)

// DownloadRequest describes one profile-download call (§4.5, §4 "read_profile").
type DownloadRequest struct {
	Survey     uint16
	From       wire.Timestamp
	To         wire.Timestamp
	MaxRecords int32 // 0 means unbounded

	Progress ProgressFunc

	// DoLogin, when set, issues a LOGIN before the download using
	// Username/Password; the caller is responsible for logout.
	DoLogin  bool
	Username string
	Password string
}

// Engine is the profile download state machine. It owns a learned
// per-file chunk-size cache on top of a session.Engine; the session
// itself owns the transport and its own single-in-flight discipline, so
// an Engine adds no locking of its own around the wire.
type Engine struct {
	session *session.Engine
	cache   *chunkCache
	logger  *log.Entry
}

// NewEngine binds a profile download engine to an already-constructed
// session engine.
func NewEngine(s *session.Engine) *Engine {
	return &Engine{
		session: s,
		cache:   newChunkCache(),
		logger:  log.WithField("component", "profile"),
	}
}

// Download runs the full state machine of §4.5 and returns the resolved
// spec, the flat field list (record-major, channel-minor), and the
// first non-fatal error seen while resolving metadata (nil if none).
// A fatal error in FILE_SEARCH or FILE_READ aborts the download and is
// returned directly, with spec/fields reflecting whatever was resolved
// up to that point.
func (e *Engine) Download(ctx context.Context, req DownloadRequest) (registers.ProfileSpec, []any, error) {
	spec := registers.ProfileSpec{Survey: req.Survey, From: req.From, To: req.To}
	var firstErr error
	noteSoft := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	// Step 1: optional login.
	if req.DoLogin {
		if err := e.session.Login(ctx, req.Username, req.Password); err != nil {
			return spec, nil, err
		}
	}

	// Step 2: the two info registers.
	intervalReg := registers.IntervalSecondsRegister
	intervalReg.Address = registers.IntervalSecondsAddress(req.Survey)
	channelsReg := registers.ChannelsCountRegister
	channelsReg.Address = registers.ChannelsCountAddress(req.Survey)

	results, err := e.session.ReadRegisters(ctx, []registers.Register{intervalReg, channelsReg})
	var haveInterval bool
	if err != nil {
		noteSoft(err)
	} else {
		if results[0].Err == nil {
			spec.FileInfo.IntervalSeconds = uint32(results[0].Value.(int32))
			haveInterval = true
		} else {
			noteSoft(results[0].Err)
		}
		if results[1].Err == nil {
			spec.FileInfo.ChannelsCount = results[1].Value.(uint8) + 1
		} else {
			noteSoft(results[1].Err)
		}
	}

	// Step 3: FILE_INFO.
	info, err := e.session.FileInfo(ctx, req.Survey)
	if err != nil {
		noteSoft(err)
		if err == proto.RegisterNotFound {
			e.cache.invalidateSurvey(req.Survey)
		}
	} else {
		info.IntervalSeconds = spec.FileInfo.IntervalSeconds
		info.ChannelsCount = spec.FileInfo.ChannelsCount
		spec.FileInfo = info
	}

	// Step 4: per-channel descriptors.
	if spec.FileInfo.ChannelsCount > 0 {
		spec.Channels = make([]registers.FileChannelInfo, 0, spec.FileInfo.ChannelsCount)
		var c uint8
		for c = 0; c < spec.FileInfo.ChannelsCount; c++ {
			ch, err := e.readChannel(ctx, req.Survey, c)
			if err != nil {
				noteSoft(err)
				continue
			}
			spec.Channels = append(spec.Channels, ch)
		}
	}

	// Step 5: locate the start of the window.
	fromSearch, err := e.session.FileSearch(ctx, req.Survey, 0, req.From, command.SearchBackward)
	if err != nil {
		return spec, nil, err
	}

	// Step 6: locate the end of the window.
	toSearch, err := e.session.FileSearch(ctx, req.Survey, 0, req.To, command.SearchForward)
	if err != nil {
		return spec, nil, err
	}

	// Step 7: resolve the record count.
	count := toSearch.StartRecord - fromSearch.StartRecord + 1
	if count < 1 {
		count = 1
	}
	if req.MaxRecords > 0 && count > req.MaxRecords {
		count = req.MaxRecords
	}

	channelTypes := make([]wire.Type, len(spec.Channels))
	for i, ch := range spec.Channels {
		channelTypes[i] = wire.Type(ch.Type)
	}
	if len(channelTypes) == 0 {
		// Metadata resolution failed entirely; nothing to decode
		// against, but the caller still gets the search results.
		spec.StartRecord = fromSearch.StartRecord
		spec.From = req.From
		spec.To = toSearch.DateTime
		return spec, nil, firstErr
	}

	// Step 8: adaptive chunked reads.
	key := chunkKey{survey: req.Survey, recordSize: spec.FileInfo.RecordSize, channelsCount: spec.FileInfo.ChannelsCount}
	limit := e.initialLimit(req.Survey, spec.FileInfo.IntervalSeconds, haveInterval, key)
	e.logger.Debugf("survey=%04X window=[%d,%d] count=%d initial_limit=%d", req.Survey, fromSearch.StartRecord, toSearch.StartRecord, count, limit)

	fields := make([]any, 0, int(count)*len(channelTypes))
	channelsPerRecord := len(channelTypes)
	var read int32
	startRecord := fromSearch.StartRecord

	for read < count {
		remaining := count - read
		want := int16(remaining)
		if int32(limit) < remaining {
			want = limit
		}

		hdr, chunk, gotChannels, err := e.session.FileRead(ctx, req.Survey, startRecord+read, want, 0, spec.FileInfo.RecordSize, channelTypes)
		if err != nil {
			return spec, fields, err
		}
		if gotChannels > 0 {
			channelsPerRecord = gotChannels
		}
		fields = append(fields, chunk...)

		got := int32(hdr.RecordsCount)
		if got <= 0 {
			break
		}
		if got < int32(want) {
			if limit > int16(got) {
				limit = int16(got)
			}
			e.cache.set(key, limit)
			e.logger.Debugf("chunk shrink: requested=%d got=%d new_limit=%d", want, got, limit)
		}
		read += got

		if req.Progress != nil {
			req.Progress(read, count)
		}
	}

	// Step 9.
	if channelsPerRecord > 0 {
		spec.RecordsCount = int32(len(fields) / channelsPerRecord)
	}
	spec.From = req.From
	spec.To = toSearch.DateTime
	spec.StartRecord = startRecord

	return spec, fields, firstErr
}

func (e *Engine) readChannel(ctx context.Context, survey uint16, c uint8) (registers.FileChannelInfo, error) {
	regs := registers.FileChannelRegisters(survey, c)
	results, err := e.session.ReadRegisters(ctx, regs[:])
	if err != nil {
		return registers.FileChannelInfo{}, err
	}
	ch := registers.FileChannelInfo{Channel: c}
	for i, res := range results {
		if res.Err != nil {
			return ch, res.Err
		}
		switch i {
		case 0:
			ch.Type = res.Value.(uint8)
		case 1:
			ch.UnitCode = res.Value.(uint8)
		case 2:
			ch.ScalingCode = res.Value.(uint8)
		case 3:
			ch.ScalingFactor = res.Value.(float32)
		case 4:
			ch.Name = res.Value.(string)
		}
	}
	return ch, nil
}

// initialLimit implements the §4.5 heuristic, with the learned cache
// (§4.5 "Learned cache application") taking precedence when it is
// tighter than the heuristic would otherwise allow.
func (e *Engine) initialLimit(survey uint16, intervalSeconds uint32, haveInterval bool, key chunkKey) int16 {
	heuristic := heuristicLimit(survey, intervalSeconds, haveInterval)
	if cached, ok := e.cache.get(key); ok && cached < heuristic {
		return cached
	}
	return heuristic
}

func heuristicLimit(survey uint16, intervalSeconds uint32, haveInterval bool) int16 {
	switch registers.Survey(survey) {
	case registers.LS01:
		return 59
	case registers.LS03:
		return 288
	}
	if haveInterval && intervalSeconds > 0 {
		return int16(math.Ceil(86400 / float64(intervalSeconds)))
	}
	return 48
}
