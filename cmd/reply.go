package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/config"
	"github.com/sells-group/prospect-cli/internal/conversation"
	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/research"
)

var replyCmd = &cobra.Command{
	Use:   "reply",
	Short: "Classify a prospect reply and draft the next message",
	Long:  "Reads an email thread (messages separated by lines containing only ---), classifies the intent of the latest message, and drafts a follow-up grounded in cached research for the company.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate(config.ModeReply); err != nil {
			return err
		}

		company, _ := cmd.Flags().GetString("company")
		website, _ := cmd.Flags().GetString("website")
		threadPath, _ := cmd.Flags().GetString("thread")

		thread, err := readThread(threadPath, cmd.InOrStdin())
		if err != nil {
			return err
		}
		if len(thread) == 0 {
			return eris.New("thread is empty")
		}

		completer, err := initCompleter(ctx)
		if err != nil {
			return err
		}
		agent := conversation.New(completer, retryConfig())

		lead := model.Lead{CompanyName: company, Website: model.Str(website)}
		lead.Research = cachedResearch(ctx, lead)

		intent, err := agent.ClassifyIntent(ctx, thread[len(thread)-1])
		if err != nil {
			return err
		}
		draft, err := agent.DraftReply(ctx, thread, lead)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Intent: %s\n\n%s\n", intent, draft)
		return nil
	},
}

// readThread reads a thread file, or stdin when path is "-".
func readThread(path string, stdin io.Reader) ([]string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "read thread %s", path)
	}
	return conversation.SplitThread(string(data)), nil
}

// cachedResearch looks up stored research for lead. Any failure means the
// reply is drafted without it.
func cachedResearch(ctx context.Context, lead model.Lead) *model.Research {
	st, err := initStore(ctx)
	if err != nil {
		zap.L().Debug("reply: store unavailable", zap.Error(err))
		return nil
	}
	defer st.Close() //nolint:errcheck

	r, err := st.GetCachedResearch(ctx, research.CacheKey(lead))
	if err != nil {
		zap.L().Warn("reply: research lookup failed", zap.Error(err))
		return nil
	}
	return r
}

func init() {
	f := replyCmd.Flags()
	f.String("company", "", "company name (required)")
	f.String("website", "", "company website, used to find cached research")
	f.String("thread", "-", "thread file, or - for stdin")
	_ = replyCmd.MarkFlagRequired("company")
	rootCmd.AddCommand(replyCmd)
}
