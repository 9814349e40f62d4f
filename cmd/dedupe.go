package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/hardlinkr/hardlinkr/pkg/config"
	"github.com/hardlinkr/hardlinkr/pkg/dedupe"
	"github.com/hardlinkr/hardlinkr/pkg/expression"
	"github.com/hardlinkr/hardlinkr/pkg/inodetable"
	"github.com/hardlinkr/hardlinkr/pkg/logger"
	"github.com/hardlinkr/hardlinkr/pkg/notification"
	"github.com/hardlinkr/hardlinkr/pkg/regex"
)

func DedupeCommand() *cobra.Command {
	var (
		flagMakeHardLinks    bool
		flagPrintDedupScript bool
		flagPrintInfo        bool
		flagBlockSize        string
		flagReadRate         int
	)

	command := &cobra.Command{
		Use:   "dedupe [flags] ROOT...",
		Short: "Hard-link byte-identical files across directory trees",
		Long: `This command finds files with identical content under the given directory
roots and consolidates their storage, or reports what it would do. Roots are
processed in the order given; earlier roots are preferred when choosing the
canonical copy. All roots must reside on the same storage volume.

At least one action flag is required.`,

		Args: cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if !flagMakeHardLinks && !flagPrintDedupScript && !flagPrintInfo {
				_ = cmd.Usage()
				os.Exit(1)
			}

			start := time.Now()

			// init core
			if !initialized {
				initCore(true)
				initialized = true
			}

			// set log
			log := logger.GetLogger("dedupe")

			noti := notification.NewDiscordSender(log, config.Config.Notifications)

			// compile discovery filters
			ignorePatterns, err := regex.CompileAll(config.Config.Filters.IgnorePaths)
			if err != nil {
				log.WithError(err).Fatal("Failed compiling ignore patterns")
			}

			includeFilters, err := expression.Compile(config.Config.Filters.Include)
			if err != nil {
				log.WithError(err).Fatal("Failed compiling include filters")
			}

			excludeFilters, err := expression.Compile(config.Config.Filters.Exclude)
			if err != nil {
				log.WithError(err).Fatal("Failed compiling exclude filters")
			}

			// discover roots in priority order; rank is the argument position
			table := inodetable.New(inodetable.Options{
				IgnorePatterns: ignorePatterns,
				Include:        includeFilters,
				Exclude:        excludeFilters,
			})

			for rank, root := range args {
				if err := table.Discover(root, rank); err != nil {
					log.WithError(err).Fatalf("Failed discovering root: %q", root)
				}
			}

			log.Infof("Discovered %d inodes across %d roots", table.Length(), len(args))

			// partition by size, dropping singletons
			candidates := dedupe.PartitionBySize(table)
			log.Infof("Found %d same-size candidate classes", len(candidates))

			// resolve block size: flag > config
			blockSize, err := config.Config.BlockSizeBytes()
			if err != nil {
				log.WithError(err).Fatal("Failed parsing configured block size")
			}
			if flagBlockSize != "" {
				n, err := humanize.ParseBytes(flagBlockSize)
				if err != nil || n == 0 {
					log.WithError(err).Fatalf("Failed parsing block size: %q", flagBlockSize)
				}
				blockSize = int64(n)
			}

			readRate := flagReadRate
			if readRate == 0 {
				readRate = config.Config.Scan.ReadRate
			}

			refiner := dedupe.NewRefiner(candidates, blockSize, dedupe.WithReadRate(readRate))
			executor := dedupe.NewExecutor(FlagDryRun)

			var (
				confirmedClasses int
				fields           []notification.Field
			)

			for {
				class, err := refiner.Next()
				if err != nil {
					log.WithError(err).Fatal("Failed refining candidate classes")
				}
				if class == nil {
					break
				}

				confirmedClasses++
				canonical := dedupe.SelectCanonical(class)

				if flagPrintInfo {
					if err := executor.EmitInfo(os.Stderr, class, canonical); err != nil {
						log.WithError(err).Fatal("Failed writing class info")
					}
				}

				if flagPrintDedupScript {
					if err := executor.EmitScript(os.Stdout, class, canonical); err != nil {
						log.WithError(err).Fatal("Failed writing dedup script")
					}
				}

				if flagMakeHardLinks {
					before := executor.Relinked()
					if err := executor.ApplyHardLink(class, canonical); err != nil {
						log.WithError(err).Fatalf("Failed relinking class with canonical: %q", canonical)
					}

					fields = append(fields, noti.BuildField(notification.ActionDedupe, notification.BuildOptions{
						Canonical: canonical,
						Size:      class.Size,
						Inodes:    len(class.Members),
						Relinked:  int(executor.Relinked() - before),
					}))
				}
			}

			log.Info("-----")
			log.WithField("reclaimed_space", humanize.IBytes(executor.Reclaimed())).
				Infof("Confirmed %d duplicate classes: relinked %d paths, compared %s of content",
					confirmedClasses, executor.Relinked(), humanize.IBytes(refiner.BytesRead()))

			if !noti.CanSend() {
				log.Debug("Notifications disabled, skipping...")
				return
			}

			sendErr := noti.Send(
				"Dedupe",
				fmt.Sprintf("Confirmed **%d** duplicate classes | Relinked **%d** paths | Total reclaimed **%s**",
					confirmedClasses, executor.Relinked(), humanize.IBytes(executor.Reclaimed())),
				time.Since(start),
				fields,
				FlagDryRun,
			)
			if sendErr != nil {
				log.WithError(sendErr).Error("Failed sending notification")
			}
		},
	}

	command.Flags().BoolVar(&flagMakeHardLinks, "make-hard-links", false, "Replace duplicate files with hard links to the canonical copy")
	command.Flags().BoolVar(&flagPrintDedupScript, "print-dedup-script", false, "Print an equivalent shell script to stdout, mutating nothing")
	command.Flags().BoolVar(&flagPrintInfo, "print-info", false, "Print one diagnostic line per confirmed class to stderr")
	command.Flags().StringVar(&flagBlockSize, "block-size", "", "Comparison block size, e.g. 1MiB (overrides config)")
	command.Flags().IntVar(&flagReadRate, "read-rate", 0, "Max block reads per second, 0 = unpaced (overrides config)")

	return command
}
