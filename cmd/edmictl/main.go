package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/meterlink/edmidrv/pkg/meterconfig"
	"github.com/meterlink/edmidrv/pkg/profile"
	"github.com/meterlink/edmidrv/pkg/scaling"
	"github.com/meterlink/edmidrv/pkg/session"
	"github.com/meterlink/edmidrv/pkg/transport"
	"github.com/meterlink/edmidrv/pkg/wire"
)

const timestampLayout = "2006-01-02 15:04:05"

func main() {
	log.SetLevel(log.InfoLevel)

	configPath := flag.String("config", "meter.ini", "path to the meter connection profile")
	surveyName := flag.String("survey", "ls01", "survey short name or raw 0xNNNN code")
	from := flag.String("from", "", "window start, \"2006-01-02 15:04:05\"")
	to := flag.String("to", "", "window end, \"2006-01-02 15:04:05\"")
	maxRecords := flag.Int("max-records", 0, "cap on records downloaded, 0 = unbounded")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	if *verbose {
		log.SetLevel(log.DebugLevel)
	}
	if *from == "" || *to == "" {
		log.Fatal("both -from and -to are required")
	}

	profileCfg, err := meterconfig.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	survey, err := profileCfg.ResolveSurvey(*surveyName)
	if err != nil {
		log.Fatalf("resolving survey: %v", err)
	}
	fromTs, err := parseTimestamp(*from)
	if err != nil {
		log.Fatalf("parsing -from: %v", err)
	}
	toTs, err := parseTimestamp(*to)
	if err != nil {
		log.Fatalf("parsing -to: %v", err)
	}

	port, err := transport.OpenSerial(transport.SerialConfig{
		Port:     profileCfg.Port,
		Baud:     profileCfg.Baud,
		ReadPoll: profileCfg.ReadPoll,
	})
	if err != nil {
		log.Fatalf("opening serial port: %v", err)
	}
	defer port.Close()

	sessionEngine := session.NewEngine(port, profileCfg.MeterSerial, profileCfg.Timeout)
	ctx := context.Background()
	if err := sessionEngine.Login(ctx, profileCfg.Username, profileCfg.Password); err != nil {
		log.Fatalf("login: %v", err)
	}
	defer sessionEngine.Logout(ctx)

	profileEngine := profile.NewEngine(sessionEngine)
	spec, fields, err := profileEngine.Download(ctx, profile.DownloadRequest{
		Survey:     survey,
		From:       fromTs,
		To:         toTs,
		MaxRecords: int32(*maxRecords),
		Progress: func(read, total int32) {
			log.Debugf("profile download progress: %d/%d", read, total)
		},
	})
	if err != nil {
		log.Fatalf("download: %v", err)
	}

	records := scaling.FormatProfile(spec, fields)
	fmt.Printf("survey=0x%04X records=%d channels=%d\n", survey, len(records), len(spec.Channels))
	for _, rec := range records {
		fmt.Printf("#%d %s %v\n", rec.RecordNumber, rec.Timestamp, rec.Values)
	}
}

func parseTimestamp(s string) (wire.Timestamp, error) {
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		return wire.Timestamp{}, err
	}
	return wire.Timestamp{
		CalendarDate: wire.CalendarDate{Day: uint8(t.Day()), Month: uint8(t.Month()), Year: t.Year()},
		ClockTime:    wire.ClockTime{Hour: uint8(t.Hour()), Minute: uint8(t.Minute()), Second: uint8(t.Second())},
	}, nil
}
