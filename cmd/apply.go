package cmd

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Prakkie91/jobo-go/jobo"
)

func newApplyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Drive auto-apply sessions against a job's application form",
		Long: `Auto-apply fills in a job application form through the Jobo API.

Start a session with the job's apply URL, answer the fields it reports and
end the session when done:

  jobo apply start https://boards.greenhouse.io/acme/jobs/123
  jobo apply answer SESSION --field first_name=Ada --file resume=cv.pdf
  jobo apply end SESSION`,
	}

	cmd.AddCommand(newApplyStartCmd(a), newApplyAnswerCmd(a), newApplyEndCmd(a))
	return cmd
}

func newApplyStartCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "start APPLY_URL",
		Short: "Start an auto-apply session and list the form fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.apiClient()
			if err != nil {
				return err
			}

			session, err := client.AutoApply.StartSession(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			a.logger.Info().
				Str("session_id", session.SessionID).
				Str("provider", session.ProviderID).
				Int("fields", len(session.Fields)).
				Msg("Auto-apply session started")

			return a.printer.WriteSession(session)
		},
	}
}

type answerFlags struct {
	fields []string
	bools  []string
	multi  []string
	files  []string
}

func newApplyAnswerCmd(a *app) *cobra.Command {
	f := &answerFlags{}

	cmd := &cobra.Command{
		Use:   "answer SESSION_ID",
		Short: "Submit answers for the fields of an auto-apply session",
		Example: `  jobo apply answer SESSION --field email=ada@example.com --bool consent=true
  jobo apply answer SESSION --multi languages=en,de --file resume=./cv.pdf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.apiClient()
			if err != nil {
				return err
			}

			answers, err := f.answers()
			if err != nil {
				return err
			}

			session, err := client.AutoApply.SetAnswers(cmd.Context(), args[0], answers)
			if err != nil {
				return err
			}

			event := a.logger.Info()
			if session.HasErrors() {
				event = a.logger.Warn()
			}
			event.
				Str("session_id", session.SessionID).
				Int("answers", len(answers)).
				Int("validation_errors", len(session.ValidationErrors)).
				Str("status", session.Status).
				Msg("Answers submitted")

			return a.printer.WriteSession(session)
		},
	}

	cmd.Flags().StringArrayVar(&f.fields, "field", nil, "text answer as FIELD_ID=VALUE (repeatable)")
	cmd.Flags().StringArrayVar(&f.bools, "bool", nil, "checkbox answer as FIELD_ID=true|false (repeatable)")
	cmd.Flags().StringArrayVar(&f.multi, "multi", nil, "multi-select answer as FIELD_ID=A,B,C (repeatable)")
	cmd.Flags().StringArrayVar(&f.files, "file", nil, "file upload as FIELD_ID=PATH (repeatable)")

	return cmd
}

// answers converts the flags into field answers, in flag order per kind.
// Several --file flags for one field become one answer with several files.
func (f *answerFlags) answers() ([]jobo.FieldAnswer, error) {
	answers := make([]jobo.FieldAnswer, 0, len(f.fields)+len(f.bools)+len(f.multi)+len(f.files))

	for _, raw := range f.fields {
		id, value, err := splitAnswer("--field", raw)
		if err != nil {
			return nil, err
		}
		answers = append(answers, jobo.TextAnswer(id, value))
	}

	for _, raw := range f.bools {
		id, value, err := splitAnswer("--bool", raw)
		if err != nil {
			return nil, err
		}
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("--bool %s: %q is not a boolean", id, value)
		}
		answers = append(answers, jobo.BoolAnswer(id, b))
	}

	for _, raw := range f.multi {
		id, value, err := splitAnswer("--multi", raw)
		if err != nil {
			return nil, err
		}
		var values []string
		for _, v := range strings.Split(value, ",") {
			if v = strings.TrimSpace(v); v != "" {
				values = append(values, v)
			}
		}
		answers = append(answers, jobo.MultiAnswer(id, values...))
	}

	fileIndex := make(map[string]int)
	for _, raw := range f.files {
		id, path, err := splitAnswer("--file", raw)
		if err != nil {
			return nil, err
		}
		file, err := readAttachment(path)
		if err != nil {
			return nil, err
		}
		if i, ok := fileIndex[id]; ok {
			answers[i].Files = append(answers[i].Files, file)
			continue
		}
		fileIndex[id] = len(answers)
		answers = append(answers, jobo.FileAnswer(id, file))
	}

	if len(answers) == 0 {
		return nil, fmt.Errorf("no answers given: use --field, --bool, --multi or --file")
	}
	return answers, nil
}

func splitAnswer(flag, raw string) (string, string, error) {
	id, value, ok := strings.Cut(raw, "=")
	id = strings.TrimSpace(id)
	if !ok || id == "" {
		return "", "", fmt.Errorf("%s %q: expected FIELD_ID=VALUE", flag, raw)
	}
	return id, value, nil
}

// readAttachment loads a file for upload, guessing its content type from the extension or content
func readAttachment(path string) (jobo.FieldAnswerFile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return jobo.FieldAnswerFile{}, fmt.Errorf("failed to read attachment: %w", err)
	}

	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if contentType == "" {
		contentType = http.DetectContentType(content)
	}

	return jobo.NewFileAttachment(filepath.Base(path), contentType, content), nil
}

func newApplyEndCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "end SESSION_ID",
		Short: "End an auto-apply session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.apiClient()
			if err != nil {
				return err
			}

			ended, err := client.AutoApply.EndSession(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if !ended {
				a.logger.Warn().Str("session_id", args[0]).Msg("Session not found, it may have already ended")
				fmt.Fprintf(cmd.OutOrStdout(), "Session %s not found\n", args[0])
				return nil
			}

			a.logger.Info().Str("session_id", args[0]).Msg("Auto-apply session ended")
			fmt.Fprintf(cmd.OutOrStdout(), "Session %s ended\n", args[0])
			return nil
		},
	}
}
