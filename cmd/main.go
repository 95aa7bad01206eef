// 指示: miu200521358
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/miu200521358/mu_vrm_reducer/pkg/adapter/io_config"
	"github.com/miu200521358/mu_vrm_reducer/pkg/adapter/io_image"
	"github.com/miu200521358/mu_vrm_reducer/pkg/adapter/io_model/vrm"
	"github.com/miu200521358/mu_vrm_reducer/pkg/adapter/mpresenter/messages"
	"github.com/miu200521358/mu_vrm_reducer/pkg/shared/logging"
	"github.com/miu200521358/mu_vrm_reducer/pkg/usecase/minteractor"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

// version はビルド時に -ldflags で上書きする。
var version = "dev"

// options はCLI引数を保持する。
type options struct {
	inputPath         string
	outputPath        string
	configPath        string
	exportTexturesDir string
	textureSize       string
	replaceShadeColor bool
	emissive          bool
	force             bool
	verbose           bool
}

// main はVRMの軽量化を実行する。
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := newRootCommand(os.Stdin, os.Stdout, os.Stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRootCommand はCLIのルートコマンドを生成する。
func newRootCommand(in io.Reader, out io.Writer, errOut io.Writer) *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           messages.CommandUse,
		Short:         messages.CommandShort,
		Long:          messages.CommandLong,
		Version:       version,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.inputPath = args[0]
			return run(cmd.Context(), *opts, in, out, errOut)
		},
	}
	cmd.SetIn(in)
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	flags := cmd.Flags()
	flags.BoolVarP(&opts.replaceShadeColor, "replace-shade-color", "s", false, messages.FlagReplaceShadeColor)
	flags.BoolVarP(&opts.emissive, "emissive-color", "e", false, messages.FlagEmissive)
	flags.StringVarP(&opts.textureSize, "texture-size", "t", "2048,2048", messages.FlagTextureSize)
	flags.BoolVarP(&opts.force, "force", "f", false, messages.FlagForce)
	flags.StringVarP(&opts.configPath, "config", "c", "", messages.FlagConfig)
	flags.StringVarP(&opts.outputPath, "output", "o", "", messages.FlagOutput)
	flags.StringVar(&opts.exportTexturesDir, "export-textures", "", messages.FlagExportTextures)
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, messages.FlagVerbose)
	cmd.SetVersionTemplate("mu_vrm_reducer {{.Version}}\n")
	cmd.Flags().BoolP("version", "V", false, "バージョンを表示する")
	return cmd
}

// run はCLI処理全体を実行する。
func run(ctx context.Context, opts options, in io.Reader, out io.Writer, errOut io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.verbose {
		logging.DefaultLogger().SetLevel(logging.LevelDebug)
	}
	if strings.TrimSpace(opts.inputPath) == "" {
		return errors.New(messages.MessageInputRequired)
	}
	if !strings.EqualFold(filepath.Ext(opts.inputPath), ".vrm") {
		return fmt.Errorf(messages.MessageInputExtension, opts.inputPath)
	}
	textureSize, err := parseTextureSize(opts.textureSize)
	if err != nil {
		return err
	}

	outputPath := strings.TrimSpace(opts.outputPath)
	if outputPath == "" {
		outputPath = minteractor.BuildDefaultOutputPath(opts.inputPath)
	}
	if !opts.force && minteractor.OutputExists(outputPath) {
		ok, err := confirmOverwrite(in, out)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, messages.MessageCanceled)
			return nil
		}
	}

	repository := vrm.NewVrmRepository()
	usecase := minteractor.NewVrmReducerUsecase(minteractor.VrmReducerUsecaseDeps{
		ModelReader:     repository,
		ModelWriter:     repository,
		ImageCodec:      io_image.NewCodec(),
		ConfigReader:    io_config.NewMaterialConfigRepository(),
		TextureExporter: repository,
	})

	reporter := newProgressReporter(errOut)
	defer reporter.close()

	fmt.Fprintf(out, messages.LogLoadStart+"\n", opts.inputPath)
	result, err := usecase.Reduce(ctx, minteractor.ReduceRequest{
		InputPath:          opts.inputPath,
		OutputPath:         outputPath,
		MaterialConfigPath: opts.configPath,
		TextureExportDir:   opts.exportTexturesDir,
		Options: minteractor.ReduceOptions{
			ReplaceShadeColor: opts.replaceShadeColor,
			Emissive:          opts.emissive,
			TextureSize:       textureSize,
		},
		ProgressReporter: reporter,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", messages.MessageReduceFailed, err)
	}
	reporter.close()

	fmt.Fprintf(out, messages.LogReduceStat+"\n",
		result.Before.Materials, result.After.Materials,
		result.Before.Textures, result.After.Textures,
		result.Before.ImageBytes, result.After.ImageBytes)
	if opts.exportTexturesDir != "" {
		fmt.Fprintf(out, messages.LogTextureExport+"\n", opts.exportTexturesDir, countExported(result.TextureNames))
	}
	fmt.Fprintf(out, messages.LogReduceSuccess+"\n", result.OutputPath)
	return nil
}

// parseTextureSize は "W" または "W,H" 形式のテクスチャサイズを解析する。幅だけの指定は正方形とみなす。
func parseTextureSize(value string) (image.Point, error) {
	parts := strings.Split(strings.TrimSpace(value), ",")
	if len(parts) > 2 {
		parts = parts[:2]
	}
	if len(parts) == 1 {
		parts = append(parts, parts[0])
	}
	size := [2]int{}
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n <= 0 {
			return image.Point{}, fmt.Errorf(messages.MessageTextureSize, value)
		}
		size[i] = n
	}
	return image.Pt(size[0], size[1]), nil
}

// confirmOverwrite は上書き可否を標準入力で確認する。
func confirmOverwrite(in io.Reader, out io.Writer) (bool, error) {
	fmt.Fprint(out, messages.PromptOverwrite)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// countExported は書き出したテクスチャ数を返す。
func countExported(names []string) int {
	count := 0
	for _, name := range names {
		if name != "" {
			count++
		}
	}
	return count
}

// progressReporter は軽量化の進捗をプログレスバーへ反映する。
type progressReporter struct {
	bar *progressbar.ProgressBar
}

func newProgressReporter(w io.Writer) *progressReporter {
	bar := progressbar.NewOptions(minteractor.ReduceProgressStepCount,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(messages.ProgressDescription),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	return &progressReporter{bar: bar}
}

// ReportReduceProgress は進捗イベントごとにバーを1段進める。
func (r *progressReporter) ReportReduceProgress(event minteractor.ReduceProgressEvent) {
	r.bar.Describe(fmt.Sprintf("%s: %s", messages.ProgressDescription, event.Type))
	_ = r.bar.Add(1)
}

func (r *progressReporter) close() {
	_ = r.bar.Finish()
}
