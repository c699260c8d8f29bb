package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/oxygene76/vb3d-sim/internal/types"
	"github.com/oxygene76/vb3d-sim/pkg/court"
	"github.com/oxygene76/vb3d-sim/pkg/envelope"
	"github.com/oxygene76/vb3d-sim/pkg/kinematics"
	"github.com/oxygene76/vb3d-sim/pkg/scene"
	"github.com/oxygene76/vb3d-sim/pkg/vecmath"
)

const (
	formatJSON    = "json"
	formatSummary = "summary"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Sample a ball flight and print the scene",
	Long:  `Sample a launch or a set and print the resulting scene or a summary of its metrics.`,
}

var simulateLaunchCmd = &cobra.Command{
	Use:   "launch",
	Short: "Simulate a free launch from speed and angles",
	Long: `
Launch the ball from a start point with a speed, an elevation above the
horizontal and an azimuth measured from +x toward +y.

Examples:
  # Default serve-like launch
  vb3d simulate launch --format summary

  # Steeper launch from the baseline, exported sample by sample
  vb3d simulate launch --start -9,0,2.5 --speed 16 --elevation 35 --samples-file flight.jsonl
`,
	RunE: runSimulateLaunch,
}

var simulateSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Simulate a set to the hitter's contact point and its spike envelope",
	Long: `
Solve the launch velocity that carries the ball from the setter's release
point to the hitter's contact point in --t-hit seconds, then compute the
envelope of legal straight spikes from the contact point.

Examples:
  # Outside hitter on a women's net
  vb3d simulate set --net women --contact -0.8,3.8,2.9 --format summary

  # Quick set with a two-man block shading the line
  vb3d simulate set --t-hit 0.35 --blockers 2 --block-shade 0.4
`,
	RunE: runSimulateSet,
}

var envelopeCmd = &cobra.Command{
	Use:   "envelope",
	Short: "Compute the legal spike envelope for a contact point",
	Long: `
Sweep landing points over the opponent's court and keep every straight spike
from the contact point that clears the net top strictly between the antennas.
No set is simulated.

Example:
  vb3d envelope --contact -0.5,0,3.5 --nx 90 --ny 90 --format summary
`,
	RunE: runEnvelope,
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the configured scene to a JSON file",
	Long:  `Render the scene described by the config file and write it as JSON to --output, or to stdout.`,
	RunE:  runRender,
}

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List net height presets",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		presets := court.Presets()
		if format == formatJSON {
			return writeJSON(cmd.OutOrStdout(), presets)
		}
		w := cmd.OutOrStdout()
		fmt.Fprintln(w, "Net presets:")
		for _, n := range presets {
			fmt.Fprintf(w, "  %-7s top %.2f m  bottom %.2f m  antenna top %.2f m\n", n.Preset, n.Top, n.Bottom, n.AntennaTop())
		}
		fmt.Fprintf(w, "  %-7s top in [%.1f, %.1f] m, bottom 1 m below\n", court.PresetCustom, court.MinNetHeight, court.MaxNetHeight)
		return nil
	},
}

func runSimulateLaunch(cmd *cobra.Command, args []string) error {
	cfg := appConfig.Scene
	cfg.Mode = scene.ModeLaunch
	applyCommonFlags(cmd, &cfg)

	flags := cmd.Flags()
	if flags.Changed("start") {
		v, err := vectorFlag(cmd, "start")
		if err != nil {
			return err
		}
		cfg.Launch.Start = v
	}
	if flags.Changed("speed") {
		cfg.Launch.Speed, _ = flags.GetFloat64("speed")
	}
	if flags.Changed("elevation") {
		cfg.Launch.ElevationDeg, _ = flags.GetFloat64("elevation")
	}
	if flags.Changed("azimuth") {
		cfg.Launch.AzimuthDeg, _ = flags.GetFloat64("azimuth")
	}
	if flags.Changed("t-end") {
		cfg.Launch.TEnd, _ = flags.GetFloat64("t-end")
	}

	return simulateAndPrint(cmd, cfg)
}

func runSimulateSet(cmd *cobra.Command, args []string) error {
	cfg := appConfig.Scene
	cfg.Mode = scene.ModeSet
	applyCommonFlags(cmd, &cfg)

	flags := cmd.Flags()
	for name, dst := range map[string]*vecmath.Vector3{"release": &cfg.Set.Release, "contact": &cfg.Set.Contact} {
		if !flags.Changed(name) {
			continue
		}
		v, err := vectorFlag(cmd, name)
		if err != nil {
			return err
		}
		*dst = v
	}
	if flags.Changed("t-hit") {
		cfg.Set.THit, _ = flags.GetFloat64("t-hit")
	}
	if flags.Changed("t-after") {
		cfg.Set.TAfter, _ = flags.GetFloat64("t-after")
	}
	if noEnv, _ := flags.GetBool("no-envelope"); noEnv {
		cfg.Envelope.Enabled = false
	}
	if flags.Changed("paths") {
		cfg.Show.Paths, _ = flags.GetBool("paths")
	}
	applyGridFlags(cmd, &cfg.Envelope.NX, &cfg.Envelope.NY, &cfg.Envelope.K)
	if flags.Changed("max-paths") {
		cfg.Envelope.MaxPaths, _ = flags.GetInt("max-paths")
	}
	if b := blockFlags(cmd, cfg.Set.Contact.Y, cfg.Envelope.Blockers); b != nil {
		cfg.Envelope.Blockers = b
	}

	return simulateAndPrint(cmd, cfg)
}

func simulateAndPrint(cmd *cobra.Command, cfg scene.Config) error {
	format, _ := cmd.Flags().GetString("format")
	samplesFile, _ := cmd.Flags().GetString("samples-file")

	sc, err := scene.Render(cfg)
	if err != nil {
		return err
	}
	logger.Debug("scene rendered",
		zap.String("mode", string(cfg.Mode)),
		zap.Int("samples", sc.Metrics.SampleCount),
		zap.Int("legal_spikes", sc.Metrics.LegalSpikes))

	if samplesFile != "" {
		if err := exportSamples(cfg, samplesFile); err != nil {
			return err
		}
		logger.Info("samples exported", zap.String("file", samplesFile), zap.Int("samples", sc.Metrics.SampleCount))
	}

	for _, w := range sc.Warnings() {
		logger.Warn("scene advisory", zap.String("check", w.Name), zap.String("message", w.Message))
	}

	switch format {
	case formatJSON:
		return writeJSON(cmd.OutOrStdout(), sc)
	case formatSummary:
		printSceneSummary(cmd.OutOrStdout(), sc)
		return nil
	default:
		return fmt.Errorf("unknown format %q (use %s or %s)", format, formatJSON, formatSummary)
	}
}

func exportSamples(cfg scene.Config, path string) error {
	flight, err := scene.Flight(cfg)
	if err != nil {
		return err
	}
	sink, err := kinematics.NewJSONLSampleWriter(path)
	if err != nil {
		return fmt.Errorf("failed to create samples file: %w", err)
	}
	defer sink.Close()
	if err := flight.Stream(sink); err != nil {
		return fmt.Errorf("failed to write samples: %w", err)
	}
	return nil
}

// envelopeReport is the envelope command's JSON output.
type envelopeReport struct {
	Contact   vecmath.Vector3  `json:"contact"`
	NetHeight float64          `json:"net_height"`
	Stats     envelope.Stats   `json:"stats"`
	Result    *envelope.Result `json:"result,omitempty"`
}

func runEnvelope(cmd *cobra.Command, args []string) error {
	cfg := appConfig.Scene
	applyCommonFlags(cmd, &cfg)
	format, _ := cmd.Flags().GetString("format")
	statsOnly, _ := cmd.Flags().GetBool("stats-only")

	contact := cfg.Set.Contact
	if cmd.Flags().Changed("contact") {
		v, err := vectorFlag(cmd, "contact")
		if err != nil {
			return err
		}
		contact = v
	}
	nx, ny, k := cfg.Envelope.NX, cfg.Envelope.NY, cfg.Envelope.K
	applyGridFlags(cmd, &nx, &ny, &k)

	net, err := court.GetPreset(cfg.Net, cfg.CustomNetHeight)
	if err != nil {
		return err
	}
	res, err := envelope.Generate(envelope.Params{
		Contact:   contact,
		NetHeight: net.Top,
		NX:        nx,
		NY:        ny,
		K:         k,
		Blockers:  blockFlags(cmd, contact.Y, cfg.Envelope.Blockers),
	})
	if err != nil {
		return err
	}
	stats := envelope.Summarize(res, net.Top)
	logger.Debug("envelope generated",
		zap.Int("candidates", res.Candidates),
		zap.Int("legal", stats.Legal),
		zap.Any("rejected", res.Rejected))

	switch format {
	case formatJSON:
		report := envelopeReport{Contact: contact, NetHeight: net.Top, Stats: stats}
		if !statsOnly {
			report.Result = res
		}
		return writeJSON(cmd.OutOrStdout(), report)
	case formatSummary:
		printEnvelopeSummary(cmd.OutOrStdout(), contact, net.Top, res, stats)
		return nil
	default:
		return fmt.Errorf("unknown format %q (use %s or %s)", format, formatJSON, formatSummary)
	}
}

func runRender(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	compact, _ := cmd.Flags().GetBool("compact")

	cfg := appConfig.Scene
	applyCommonFlags(cmd, &cfg)
	if cmd.Flags().Changed("mode") {
		mode, _ := cmd.Flags().GetString("mode")
		cfg.Mode = scene.Mode(mode)
	}

	var surface scene.Surface = scene.JSONSurface{W: cmd.OutOrStdout(), Indent: !compact}
	if output != "" {
		surface = scene.FileSurface{Path: output, Indent: !compact}
	}

	sc, err := scene.Present(cfg, surface)
	if err != nil {
		return err
	}
	if output != "" {
		logger.Info("scene written",
			zap.String("file", output),
			zap.Int("lines", len(sc.Lines)),
			zap.Int("point_sets", len(sc.Points)))
	}
	return nil
}

// applyCommonFlags folds the net and step flags shared by every command
// into cfg.
func applyCommonFlags(cmd *cobra.Command, cfg *scene.Config) {
	flags := cmd.Flags()
	if flags.Changed("net") {
		net, _ := flags.GetString("net")
		cfg.Net = court.NetPreset(net)
	}
	if flags.Changed("net-height") {
		cfg.Net = court.PresetCustom
		cfg.CustomNetHeight, _ = flags.GetFloat64("net-height")
	}
	if flags.Changed("dt") {
		cfg.Dt, _ = flags.GetFloat64("dt")
	}
}

func applyGridFlags(cmd *cobra.Command, nx, ny, k *int) {
	flags := cmd.Flags()
	if flags.Changed("nx") {
		*nx, _ = flags.GetInt("nx")
	}
	if flags.Changed("ny") {
		*ny, _ = flags.GetInt("ny")
	}
	if flags.Changed("k") {
		*k, _ = flags.GetInt("k")
	}
}

// blockFlags returns the block described by the --blockers flags, current
// when they are absent.
func blockFlags(cmd *cobra.Command, hitterY float64, current *envelope.Block) *envelope.Block {
	flags := cmd.Flags()
	if !flags.Changed("blockers") {
		return current
	}
	count, _ := flags.GetInt("blockers")
	shade, _ := flags.GetFloat64("block-shade")
	anchor := envelope.AnchorFromHitter(hitterY, shade)
	if flags.Changed("block-anchor") {
		anchor, _ = flags.GetFloat64("block-anchor")
	}
	b := envelope.DefaultBlock(anchor)
	b.Count = count
	return &b
}

func vectorFlag(cmd *cobra.Command, name string) (vecmath.Vector3, error) {
	vals, err := cmd.Flags().GetFloat64Slice(name)
	if err != nil {
		return vecmath.Vector3{}, err
	}
	if len(vals) != 3 {
		return vecmath.Vector3{}, fmt.Errorf("--%s needs three values x,y,z, got %d", name, len(vals))
	}
	return vecmath.Vector3{X: vals[0], Y: vals[1], Z: vals[2]}, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printSceneSummary(w io.Writer, sc *types.Scene) {
	m := sc.Metrics
	fmt.Fprintf(w, "Mode:            %s\n", m.Mode)
	fmt.Fprintf(w, "Net height:      %.2f m\n", m.NetHeight)
	fmt.Fprintf(w, "Launch velocity: (%.3f, %.3f, %.3f) m/s, |v0| = %.2f m/s\n", m.V0.X, m.V0.Y, m.V0.Z, m.LaunchSpeed)
	fmt.Fprintf(w, "Samples:         %d\n", m.SampleCount)
	fmt.Fprintf(w, "Apex:            z = %.2f m at t = %.3f s\n", m.Apex.Z, m.ApexTime)

	if m.Mode == string(scene.ModeSet) {
		fmt.Fprintf(w, "Flight time:     %.2f s\n", m.FlightTime)
		if m.BallAtContact != nil {
			b := m.BallAtContact
			fmt.Fprintf(w, "Ball at contact: (%.2f, %.2f, %.2f), %.2f m/s\n", b.X, b.Y, b.Z, m.SpeedAtContact)
		}
		fmt.Fprintf(w, "Legal spikes:    %d (blocked %d)\n", m.LegalSpikes, m.BlockedSpikes)
		if m.LegalSpikes > 0 {
			fmt.Fprintf(w, "Mean crossing z: %.2f m, window %.2f m²\n", m.MeanCrossingZ, m.CrossingArea)
		}
	}

	fmt.Fprintln(w, "Checks:")
	for _, a := range sc.Advisories {
		mark := "ok  "
		if !a.OK {
			mark = "WARN"
		}
		fmt.Fprintf(w, "  [%s] %s\n", mark, a.Message)
	}
}

func printEnvelopeSummary(w io.Writer, contact vecmath.Vector3, netHeight float64, res *envelope.Result, st envelope.Stats) {
	fmt.Fprintf(w, "Contact:         (%.2f, %.2f, %.2f)\n", contact.X, contact.Y, contact.Z)
	fmt.Fprintf(w, "Net height:      %.2f m\n", netHeight)
	fmt.Fprintf(w, "Candidates:      %d\n", res.Candidates)
	fmt.Fprintf(w, "Legal:           %d\n", st.Legal)
	if st.Blocked > 0 {
		fmt.Fprintf(w, "Blocked:         %d\n", st.Blocked)
	}

	var reasons []string
	for _, v := range []envelope.Verdict{envelope.Parallel, envelope.NoCrossing, envelope.BelowNet, envelope.OutsideAntennas} {
		if n := res.Rejected[v.String()]; n > 0 {
			reasons = append(reasons, fmt.Sprintf("%s %d", v, n))
		}
	}
	if len(reasons) > 0 {
		fmt.Fprintf(w, "Rejected:        %s\n", strings.Join(reasons, ", "))
	}

	if st.Legal == 0 {
		fmt.Fprintln(w, "No legal spike from this contact point.")
		return
	}
	fmt.Fprintf(w, "Crossing z:      mean %.2f m, std %.2f m\n", st.MeanCrossingZ, st.StdCrossingZ)
	fmt.Fprintf(w, "Clearance:       %.2f .. %.2f m (mean %.2f)\n", st.MinClearance, st.MaxClearance, st.MeanClearance)
	fmt.Fprintf(w, "Crossing window: %.2f m²\n", st.CrossingAreaM2)
}

func init() {
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(envelopeCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(presetsCmd)

	simulateCmd.AddCommand(simulateLaunchCmd)
	simulateCmd.AddCommand(simulateSetCmd)

	for _, c := range []*cobra.Command{simulateLaunchCmd, simulateSetCmd, envelopeCmd, renderCmd} {
		c.Flags().String("net", "", "Net preset (men|women|custom)")
		c.Flags().Float64("net-height", 0, "Custom net top height in meters (implies --net custom)")
	}
	for _, c := range []*cobra.Command{simulateLaunchCmd, simulateSetCmd, renderCmd} {
		c.Flags().Float64("dt", 0.01, "Sampling step in seconds")
	}
	for _, c := range []*cobra.Command{simulateLaunchCmd, simulateSetCmd} {
		c.Flags().String("format", formatJSON, "Output format (json|summary)")
		c.Flags().String("samples-file", "", "Also write the sampled flight as JSON lines to this file")
	}
	for _, c := range []*cobra.Command{simulateSetCmd, envelopeCmd} {
		c.Flags().Float64Slice("contact", nil, "Hitter contact point x,y,z")
		c.Flags().Int("nx", 60, "Landing grid columns")
		c.Flags().Int("ny", 60, "Landing grid rows")
		c.Flags().Int("k", 10, "Points per legal spike path")
		c.Flags().Int("blockers", 0, "Number of blockers (0-3)")
		c.Flags().Float64("block-shade", 0.3, "Lateral shade of the block toward the court center")
		c.Flags().Float64("block-anchor", 0, "Explicit lateral center of the block")
	}

	simulateLaunchCmd.Flags().Float64Slice("start", nil, "Launch point x,y,z")
	simulateLaunchCmd.Flags().Float64("speed", 15, "Launch speed in m/s")
	simulateLaunchCmd.Flags().Float64("elevation", 25, "Elevation angle in degrees")
	simulateLaunchCmd.Flags().Float64("azimuth", 0, "Azimuth angle in degrees")
	simulateLaunchCmd.Flags().Float64("t-end", 3, "Simulated duration in seconds")

	simulateSetCmd.Flags().Float64Slice("release", nil, "Setter release point x,y,z")
	simulateSetCmd.Flags().Float64("t-hit", 0.55, "Time from release to contact in seconds")
	simulateSetCmd.Flags().Float64("t-after", 0.3, "Extra time drawn after contact in seconds")
	simulateSetCmd.Flags().Bool("no-envelope", false, "Skip the spike envelope")
	simulateSetCmd.Flags().Bool("paths", false, "Include individual spike paths")
	simulateSetCmd.Flags().Int("max-paths", 800, "Maximum spike paths drawn")

	envelopeCmd.Flags().String("format", formatSummary, "Output format (json|summary)")
	envelopeCmd.Flags().Bool("stats-only", false, "Omit points from JSON output")

	renderCmd.Flags().String("output", "", "Output file (default stdout)")
	renderCmd.Flags().String("mode", "", "Override the config mode (launch|set)")
	renderCmd.Flags().Bool("compact", false, "Write compact JSON")

	presetsCmd.Flags().String("format", formatSummary, "Output format (json|summary)")
}
