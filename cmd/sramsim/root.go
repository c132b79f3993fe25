package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/sarchlab/sramsim/monitoring"
	"github.com/sarchlab/sramsim/recording"
	"github.com/sarchlab/sramsim/sim"
	"github.com/sarchlab/sramsim/sram"
	"github.com/sarchlab/sramsim/sramctrl"
	"github.com/sarchlab/sramsim/traffic"
)

var flags struct {
	addrWidth int
	dataWidth int
	laneWidth int

	byteEnable bool
	fastRead   bool

	readActive      int
	readTurnaround  int
	writeActive     int
	writeTurnaround int

	outputDelay int
	inputDelay  int

	freqMHz      int
	numTransfers int
	maxAddress   uint64
	seed         int64

	trace       bool
	traceFile   string
	monitor     bool
	monitorPort int
	openBrowser bool
}

var rootCmd = &cobra.Command{
	Use:   "sramsim",
	Short: "Simulate a pipelined bus bridged onto asynchronous SRAM chips",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return run()
	},
	SilenceUsage: true,
}

func init() {
	// A .env file can pre-set the environment-backed defaults below.
	_ = godotenv.Load()

	f := rootCmd.Flags()

	f.IntVar(&flags.addrWidth, "addr-width", 18, "chip address bus width")
	f.IntVar(&flags.dataWidth, "data-width", 32, "host bus data width")
	f.IntVar(&flags.laneWidth, "lane-width", 16, "per-chip data width")

	f.BoolVar(&flags.byteEnable, "byte-enable", true,
		"chips have byte enable lines")
	f.BoolVar(&flags.fastRead, "fast-read", false,
		"chain back-to-back reads without a turnaround")

	f.IntVar(&flags.readActive, "read-active", 2,
		"cycles per read access phase")
	f.IntVar(&flags.readTurnaround, "read-turnaround", 1,
		"cycles per read turnaround phase")
	f.IntVar(&flags.writeActive, "write-active", 2,
		"cycles per write access phase")
	f.IntVar(&flags.writeTurnaround, "write-turnaround", 1,
		"cycles per write recovery phase")

	f.IntVar(&flags.outputDelay, "output-delay", 0,
		"clock-to-output latency in cycles")
	f.IntVar(&flags.inputDelay, "input-delay", 0,
		"input capture latency in cycles")

	f.IntVar(&flags.freqMHz, "freq", 100, "clock frequency in MHz")
	f.IntVar(&flags.numTransfers, "num-transfers", 1000,
		"number of random transactions to run")
	f.Uint64Var(&flags.maxAddress, "max-address", 256,
		"word address range of the random traffic")
	f.Int64Var(&flags.seed, "seed", 1, "random seed")

	f.BoolVar(&flags.trace, "trace", false,
		"record per-cycle chip signal frames into a SQLite database")
	f.StringVar(&flags.traceFile, "trace-file",
		os.Getenv("SRAMSIM_TRACE"),
		"trace database file name, auto-generated when empty")
	f.BoolVar(&flags.monitor, "monitor", false,
		"start the monitoring web server")
	f.IntVar(&flags.monitorPort, "monitor-port",
		envInt("SRAMSIM_MONITOR_PORT", 0),
		"monitoring server port, random when 0")
	f.BoolVar(&flags.openBrowser, "open-browser", false,
		"open the monitoring page in a browser")
}

func run() error {
	cfg := sram.Config{
		AddrWidth:       flags.addrWidth,
		DataWidth:       flags.dataWidth,
		LaneWidth:       flags.laneWidth,
		ByteEnable:      flags.byteEnable,
		ReadActive:      flags.readActive,
		ReadTurnaround:  flags.readTurnaround,
		WriteActive:     flags.writeActive,
		WriteTurnaround: flags.writeTurnaround,
		FastRead:        flags.fastRead,
		OutputDelay:     flags.outputDelay,
		InputDelay:      flags.inputDelay,
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	freq := sim.Freq(flags.freqMHz) * sim.MHz
	engine := sim.NewSerialEngine()

	ctrl := sramctrl.MakeBuilder().
		WithEngine(engine).
		WithFreq(freq).
		WithConfig(cfg).
		Build("SRAMCtrl")

	gen := traffic.MakeBuilder().
		WithEngine(engine).
		WithFreq(freq).
		WithConfig(cfg).
		WithNumTransfers(flags.numTransfers).
		WithMaxAddress(flags.maxAddress).
		WithSeed(flags.seed).
		Build("Traffic")
	gen.SetControllerPort(ctrl.TopPort())

	conn := sim.NewDirectConnection("Conn", engine, freq)
	conn.PlugIn(gen.Port())
	conn.PlugIn(ctrl.TopPort())
	conn.PlugIn(ctrl.CtrlPort())

	if flags.trace {
		recorder := recording.NewDataRecorder(flags.traceFile)
		defer recorder.Close()

		ctrl.AcceptHook(recording.NewFrameTracer(recorder, "frames"))
	}

	if flags.monitor {
		monitor := monitoring.NewMonitor()
		monitor.RegisterEngine(engine)
		monitor.RegisterComponent(ctrl)
		monitor.RegisterComponent(gen)
		if flags.monitorPort != 0 {
			monitor.WithPortNumber(flags.monitorPort)
		}
		if flags.openBrowser {
			monitor.WithBrowser()
		}
		monitor.StartServer()
	}

	gen.TickLater()

	if err := engine.Run(); err != nil {
		return err
	}

	if !gen.Done() {
		log.Panic("simulation ended with incomplete transactions")
	}

	reads, writes := gen.TransferCounts()
	fmt.Printf("Completed %d reads and %d writes in %d cycles\n",
		reads, writes, freq.Cycle(engine.CurrentTime()))

	return nil
}

func envInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}

	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}

	return v
}
