// Command actrdemo counts words with a chain of actors.
//
// A "lines" actor splits text into words and forwards them to a "words"
// actor which divides into overflow children once its backlog reaches
// LIMIT. A "report" actor waits for both topics before it prints the top
// words. Configuration is read from the YAML file named by CONFIG and
// ACTR_* variables; set ACTR_METRICS_ADDR to expose /metrics.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/codewandler/actr-go/core/actor"
	"github.com/codewandler/actr-go/core/app"
	"github.com/codewandler/actr-go/core/config"
)

// === Config ===

var (
	lines     = getEnvInt("LINES", 20_000)
	wordsPer  = getEnvInt("WORDS", 12)
	limit     = getEnvInt("LIMIT", 500)
	topN      = getEnvInt("TOP", 10)
	debug     = getEnvBool("DEBUG", false)
	configSrc = getEnv("CONFIG", "")
)

func getEnvBool(key string, fallback bool) bool {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	return v == "1" || strings.ToLower(v) == "true"
}

func getEnv(key, fallback string) string {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, fmt.Sprintf("%d", fallback)))
	if err != nil {
		return fallback
	}
	return v
}

// === Domain ===

var vocabulary = strings.Fields(`actor queue topic router cluster pool child
message drain leftover chain backlog worker cache priority passive active
schedule terminate await division overflow`)

type tally struct {
	mu     sync.Mutex
	counts map[string]int
}

func (t *tally) add(word string) {
	t.mu.Lock()
	t.counts[word]++
	t.mu.Unlock()
}

func (t *tally) top(n int) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	words := make([]string, 0, len(t.counts))
	for w := range t.counts {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if t.counts[words[i]] != t.counts[words[j]] {
			return t.counts[words[i]] > t.counts[words[j]]
		}
		return words[i] < words[j]
	})
	if len(words) > n {
		words = words[:n]
	}

	out := make([]string, len(words))
	for i, w := range words {
		out[i] = fmt.Sprintf("%-10s %d", w, t.counts[w])
	}
	return out
}

func splitter() actor.Handler[string] {
	return actor.HandlerFunc[string](func(ctx actor.Ctx, msg actor.Message[string]) error {
		words, ok := actor.Lookup[string](ctx, "words")
		if !ok {
			return fmt.Errorf("no words topic")
		}
		words.SendAll(actor.Messages(strings.Fields(msg.Payload)...))
		return nil
	})
}

func counter(t *tally) actor.Handler[string] {
	return actor.HandlerFunc[string](func(ctx actor.Ctx, msg actor.Message[string]) error {
		t.add(msg.Payload)
		ctx.Cache().Put("last_word", msg.Payload)
		return nil
	})
}

func reporter(t *tally, done chan<- []string) actor.Handler[string] {
	return actor.HandlerFunc[string](func(ctx actor.Ctx, _ actor.Message[string]) error {
		ctx.Log().Info("words drained, building report")
		done <- t.top(topN)
		return nil
	})
}

// === Main ===

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	if err := run(ctx, log); err != nil {
		log.Error("demo failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, log *slog.Logger) error {
	cfg, err := config.Load(configSrc)
	if err != nil {
		return err
	}
	if cfg.Name == "" {
		cfg.Name = "actrdemo"
	}

	a, err := app.Run(app.Config{Context: ctx, Log: log, Cluster: cfg})
	if err != nil {
		return err
	}

	t := &tally{counts: make(map[string]int)}
	report := make(chan []string, 1)

	newActor := func(opts actor.Options[string], h actor.Handler[string]) (*actor.Actor[string], error) {
		opts.Metrics = a.ActorMetrics()
		opts.Log = log
		act, err := actor.New(opts, h)
		if err != nil {
			return nil, err
		}
		return act, a.AddRootActor(act)
	}

	lineActor, err := newActor(actor.Options[string]{Topic: "lines", Priority: actor.PriorityHigh}, splitter())
	if err != nil {
		return err
	}
	wordActor, err := newActor(actor.Options[string]{
		Topic:    "words",
		Division: actor.NewSizeBased[string](limit),
	}, counter(t))
	if err != nil {
		return err
	}
	reportActor, err := newActor(actor.Options[string]{
		Topic:    "report",
		Priority: actor.PriorityLow,
		WaitList: []actor.Topic{"lines", "words"},
	}, reporter(t, report))
	if err != nil {
		return err
	}

	log.Info(
		"starting",
		slog.Int("lines", lines),
		slog.Int("words_per_line", wordsPer),
		slog.Int("limit", limit),
		slog.String("pool", string(cfg.Pool.Kind)),
		slog.Int("pool_size", cfg.Pool.Size),
	)
	startAt := time.Now()

	// bulk load before scheduling anything
	rng := rand.New(rand.NewPCG(1, 2))
	batch := make([]actor.Message[string], 0, lines)
	for range lines {
		words := make([]string, wordsPer)
		for i := range words {
			words[i] = vocabulary[rng.IntN(len(vocabulary))]
		}
		batch = append(batch, actor.NewMessage(strings.Join(words, " ")))
	}
	lineActor.LoadAll(batch)
	lineActor.ScheduleChain()
	reportActor.Send(actor.NewMessage("report"))

	var top []string
	select {
	case top = <-report:
	case <-ctx.Done():
		log.Warn("interrupted")
	}

	leftovers, err := a.Shutdown(ctx)
	took := time.Since(startAt)

	// === stats ===
	fmt.Println("==========================================")
	for _, line := range top {
		fmt.Println(line)
	}
	fmt.Println("------------------------------------------")

	mu := getMemUsage()
	fmt.Printf("total runtime: %.3f seconds\n", took.Seconds())
	fmt.Printf("  line actors: %d\n", lineActor.Depth())
	fmt.Printf("  word actors: %d\n", wordActor.Depth())
	fmt.Printf("    words/s  : %d\n", int(float64(lines*wordsPer)/took.Seconds()))
	fmt.Printf("    leftovers: %d\n", leftovers.Count())
	for topic, msgs := range leftovers {
		fmt.Printf("      %-8s %d\n", topic, len(msgs))
	}
	fmt.Printf("       memory: %d / %d MiB (sys), %d gc\n", mu.Alloc/1024/1024, mu.Sys/1024/1024, mu.NumGC)

	return err
}

// === stats helpers ===

type MemUsage struct {
	Alloc uint64 // bytes allocated and not yet freed (heap)
	Sys   uint64 // total bytes obtained from OS
	NumGC uint32 // gc cycles
}

func getMemUsage() MemUsage {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemUsage{Alloc: m.Alloc, Sys: m.Sys, NumGC: m.NumGC}
}
