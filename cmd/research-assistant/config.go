// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/research-assistant/internal/analysis"
	"github.com/pdiddy/research-assistant/internal/paperstore"
	"github.com/pdiddy/research-assistant/internal/search"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// setDefaults registers a default for every configuration key. Registering
// each key also lets AutomaticEnv resolve it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("store.path", paperstore.DefaultPath)
	v.SetDefault("store.max_results", 10)

	v.SetDefault("source.base_url", search.DefaultArxivURL)
	v.SetDefault("source.page_size", 100)
	v.SetDefault("source.timeout", 30*time.Second)
	v.SetDefault("source.user_agent", "research-assistant/"+version)

	v.SetDefault("model.provider", string(types.ProviderOllama))
	v.SetDefault("model.name", analysis.DefaultModel)
	v.SetDefault("model.server_url", "")
	v.SetDefault("model.temperature", 0.7)
	v.SetDefault("model.timeout", 5*time.Minute)
	v.SetDefault("model.memo_size", 100)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("server.address", "127.0.0.1:8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
}

// bindEnv maps RESEARCH_ASSISTANT_<SECTION>_<KEY> variables onto config keys.
func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("RESEARCH_ASSISTANT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}
