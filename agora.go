// This is the main entry point for the Agora Go library. It re-exports
// the most commonly used types and functions from the various
// sub-packages.
//
//	// Load configuration and build the panel
//	panel, err := agora.NewPanelFromFile("config.yaml")
//
//	// Ask the panel a question
//	resp, err := panel.Ask(ctx, &agora.Query{Text: "What is freedom?"})
//
//	// Or run a debate
//	session, err := panel.Debate(ctx, &agora.Query{Text: "What is freedom?"}, 3)
package agora

import (
	// Re-export commonly used types and functions
	pkgagora "github.com/kadirpekel/agora/pkg/agora"
	"github.com/kadirpekel/agora/pkg/config"
	"github.com/kadirpekel/agora/pkg/debate"
	"github.com/kadirpekel/agora/pkg/routing"
)

// Re-export commonly used types
type (
	// Panel types
	Panel         = pkgagora.Panel
	Query         = routing.Query
	PanelResponse = debate.PanelResponse
	Session       = debate.Session

	// Config is the main Agora configuration
	Config = config.Config
)

// Re-export commonly used functions
var (
	// Panel functions
	NewPanel         = pkgagora.New
	NewPanelFromFile = pkgagora.NewFromFile

	// Config functions
	LoadConfig  = config.Load
	ParseConfig = config.Parse
)
