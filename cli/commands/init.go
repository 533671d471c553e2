package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"text/template"

	"github.com/spf13/cobra"

	"github.com/petal-labs/giga/core"
	"github.com/petal-labs/giga/transports/curl"
	"github.com/petal-labs/giga/transports/httpapi"
)

func (a *App) newInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init <project-dir>",
		Short: "Initialize a new GigaChat project",
		Long: `Initialize a new project that calls GigaChat with the giga library.

Creates a project directory with:
  - main.go: a starter program running the token and chat flow
  - config.yaml: giga configuration with the default endpoints
  - .env.example: the GIGACHAT_* variables to fill in
  - .gitignore: keeps .env out of version control

Example:
  giga init jokebot
  giga init jokebot --transport curl`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInit(args[0], a.cfg.Transport)
		},
	}
}

func (a *App) runInit(projectPath, transport string) error {
	projectName := filepath.Base(projectPath)

	// Validate project name (just the base name, not full path)
	if err := validateProjectName(projectName); err != nil {
		return err
	}
	if _, ok := transportPackages[transport]; !ok {
		return fmt.Errorf("unsupported transport %q for generated code", transport)
	}

	// Check if directory already exists
	if _, err := os.Stat(projectPath); err == nil {
		return fmt.Errorf("directory %q already exists", projectPath)
	}

	if err := os.MkdirAll(projectPath, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", projectPath, err)
	}

	data := templateData{
		Name:      projectName,
		Transport: transport,
		Model:     string(core.DefaultModel),
	}

	files := []struct {
		name string
		tmpl string
		mode os.FileMode
	}{
		{"main.go", mainGoTemplate, 0644},
		{"config.yaml", configYamlTemplate, 0644},
		{".env.example", envExampleTemplate, 0644},
		{".gitignore", gitignoreTemplate, 0644},
	}

	for _, f := range files {
		path := filepath.Join(projectPath, f.name)
		if err := generateFile(path, f.tmpl, data, f.mode); err != nil {
			return fmt.Errorf("failed to create %s: %w", f.name, err)
		}
	}

	// Print success message
	fmt.Fprintf(a.stdout, "Created GigaChat project: %s\n\n", projectName)
	fmt.Fprintln(a.stdout, "Next steps:")
	fmt.Fprintf(a.stdout, "  cd %s\n", projectPath)
	fmt.Fprintln(a.stdout, "  cp .env.example .env  # fill in GIGACHAT_CLIENT_ID and GIGACHAT_CLIENT_SECRET")
	fmt.Fprintln(a.stdout, "  go run main.go")

	return nil
}

var validProjectName = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)

func validateProjectName(name string) error {
	if name == "" {
		return fmt.Errorf("project name cannot be empty")
	}

	if !validProjectName.MatchString(name) {
		return fmt.Errorf("invalid project name %q: must start with a letter and contain only letters, numbers, underscores, and hyphens", name)
	}

	if name == "giga" {
		return fmt.Errorf("invalid project name %q: reserved name", name)
	}

	return nil
}

// transportPackages maps transport IDs to their package names.
var transportPackages = map[string]string{
	httpapi.ID: "httpapi",
	curl.ID:    "curl",
}

type templateData struct {
	Name      string
	Transport string
	Model     string
}

var templateFuncs = template.FuncMap{
	"transportPackage": func(id string) string { return transportPackages[id] },
	"envVar":           func(suffix string) string { return "GIGACHAT_" + suffix },
}

func generateFile(path, tmplContent string, data templateData, mode os.FileMode) error {
	tmpl, err := template.New(filepath.Base(path)).Funcs(templateFuncs).Parse(tmplContent)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer f.Close()

	return tmpl.Execute(f, data)
}

// Templates

var mainGoTemplate = `package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/petal-labs/giga/core"
	"github.com/petal-labs/giga/transports"
	"github.com/petal-labs/giga/transports/{{.Transport | transportPackage}}"
)

func main() {
	creds := core.NewCredentials(
		os.Getenv("{{"CLIENT_ID" | envVar}}"),
		os.Getenv("{{"CLIENT_SECRET" | envVar}}"),
		os.Getenv("{{"SCOPE" | envVar}}"),
	)
	if err := creds.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	t := {{.Transport | transportPackage}}.New(transports.NewConfig(transports.WithModel("{{.Model}}")))
	client := core.NewClient(t, creds)

	result, err := client.Chat().
		System("Ты мастер рассказывать анекдоты").
		User("Придумай короткий анекдот про программиста").
		GetResponse(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	out, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(out))
}
`

var configYamlTemplate = `# {{.Name}} giga configuration
# Credentials belong in .env or 'giga creds set', not in this file.
scope: GIGACHAT_API_PERS
oauth_url: ` + core.DefaultOAuthURL + `
chat_completions_url: ` + core.DefaultCompletionsURL + `
model: {{.Model}}
transport: {{.Transport}}
auth_timeout: 30s
chat_timeout: 60s
insecure_skip_verify: false
log_level: INFO
`

var envExampleTemplate = `{{"CLIENT_ID" | envVar}}=
{{"CLIENT_SECRET" | envVar}}=
{{"SCOPE" | envVar}}=GIGACHAT_API_PERS
`

var gitignoreTemplate = `.env
`
