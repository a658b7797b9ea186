package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var infoJSON bool

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the state of the collection",
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
	infoCmd.Flags().BoolVar(&infoJSON, "json", false, "output as JSON")
}

type infoOutput struct {
	Status     string   `json:"status"`
	Count      int      `json:"count"`
	Backend    string   `json:"backend"`
	Collection string   `json:"collection"`
	Dir        string   `json:"dir"`
	Embedding  string   `json:"embedding"`
	LLM        string   `json:"llm"`
	Formats    []string `json:"formats"`
}

func runInfo(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	a, err := newApp(cmd.Context(), cfg, GetRootDir(), false)
	if err != nil {
		return err
	}
	defer a.Close()

	info := a.session.Info(cmd.Context())
	out := infoOutput{
		Status:     info.Status,
		Count:      info.Count,
		Backend:    cfg.Index.Backend,
		Collection: cfg.Index.Collection,
		Dir:        indexDir(cfg, GetRootDir()),
		Embedding:  cfg.Embedding.Provider + "/" + cfg.Embedding.Model,
		LLM:        cfg.LLM.Provider + "/" + cfg.LLM.Model,
		Formats:    a.formats,
	}

	if infoJSON {
		output, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("Status:     %s\n", out.Status)
	fmt.Printf("Chunks:     %d\n", out.Count)
	fmt.Printf("Backend:    %s\n", out.Backend)
	fmt.Printf("Collection: %s\n", out.Collection)
	fmt.Printf("Directory:  %s\n", out.Dir)
	fmt.Printf("Embedding:  %s\n", out.Embedding)
	fmt.Printf("LLM:        %s\n", out.LLM)
	fmt.Printf("Formats:    %s\n", strings.Join(out.Formats, " "))
	return nil
}
