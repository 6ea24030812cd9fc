package domain

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// GetDefaultModel retrieves the default model definition from configuration
// Returns an error if the default model is not found
func (c *Config) GetDefaultModel() (ModelDefinition, error) {
	if c.Preferences.DefaultModel == "" {
		return ModelDefinition{}, fmt.Errorf("no default model configured")
	}

	for _, model := range c.Models {
		if model.Name == c.Preferences.DefaultModel {
			return model, nil
		}
	}

	return ModelDefinition{}, fmt.Errorf("default model %s not found in configuration", c.Preferences.DefaultModel)
}

// FindModelByName searches for a model by its name
// Returns the model definition and true if found, empty model and false otherwise
func (c *Config) FindModelByName(name string) (ModelDefinition, bool) {
	for _, model := range c.Models {
		if model.Name == name {
			return model, true
		}
	}
	return ModelDefinition{}, false
}

// HasModel checks if a model with the given name exists in the configuration
func (c *Config) HasModel(name string) bool {
	_, exists := c.FindModelByName(name)
	return exists
}

// AddModel adds a new model to the configuration
// Returns an error if a model with the same name already exists
func (c *Config) AddModel(model ModelDefinition) error {
	if c.HasModel(model.Name) {
		return fmt.Errorf("model with name %s already exists", model.Name)
	}

	c.Models = append(c.Models, model)
	return nil
}

// RemoveModel removes a model from the configuration by name
// Returns an error if the model is not found
// Automatically picks a new default model if the removed one was the default
func (c *Config) RemoveModel(name string) error {
	indexToRemove := -1
	for i, model := range c.Models {
		if model.Name == name {
			indexToRemove = i
			break
		}
	}

	if indexToRemove == -1 {
		return fmt.Errorf("model %s not found", name)
	}

	c.Models = append(c.Models[:indexToRemove], c.Models[indexToRemove+1:]...)

	if c.Preferences.DefaultModel == name {
		if len(c.Models) > 0 {
			c.Preferences.DefaultModel = c.Models[0].Name
		} else {
			c.Preferences.DefaultModel = ""
		}
	}

	return nil
}

// SetDefaultModel changes the default model to the specified name
// Returns an error if the model doesn't exist
func (c *Config) SetDefaultModel(name string) error {
	if !c.HasModel(name) {
		return fmt.Errorf("cannot set default model: model %s does not exist", name)
	}

	c.Preferences.DefaultModel = name
	return nil
}

// GetModelCount returns the total number of configured models
func (c *Config) GetModelCount() int {
	return len(c.Models)
}

// ShouldRequireApproval reports whether edits and creations wait for the operator
func (c *Config) ShouldRequireApproval() bool {
	return c.Preferences.RequireApproval
}

// GetSystemPrompt returns the instruction every new conversation starts with
func (c *Config) GetSystemPrompt() string {
	if strings.TrimSpace(c.Preferences.SystemPrompt) == "" {
		return DefaultSystemPrompt
	}
	return c.Preferences.SystemPrompt
}

// GetTelegramToken resolves the bot token, preferring the environment
func (c *Config) GetTelegramToken() string {
	envVar := c.Telegram.TokenEnvVar
	if envVar == "" {
		envVar = "TELEGRAM_BOT_TOKEN"
	}
	if token := os.Getenv(envVar); token != "" {
		return token
	}
	return c.Telegram.Token
}

// GetAllowedChatID returns the only chat allowed to drive the bot
func (c *Config) GetAllowedChatID() string {
	if id := os.Getenv("ANTIBOT_ALLOWED_CHAT_ID"); id != "" {
		return id
	}
	return strings.TrimSpace(c.Telegram.AllowedChatID)
}

// GetExecutionShell returns the configured shell for command execution
// Returns the default shell if not configured
func (c *Config) GetExecutionShell() string {
	const defaultShell = "sh"

	if c.Execution.Shell == "" || c.Execution.Shell == "auto" {
		return defaultShell
	}
	return c.Execution.Shell
}

// GetCommandTimeout returns the shell command timeout
func (c *Config) GetCommandTimeout() time.Duration {
	if c.Execution.TimeoutSeconds <= 0 {
		return DefaultCommandTimeout
	}
	return time.Duration(c.Execution.TimeoutSeconds) * time.Second
}

// GetMaxOutputLength caps command output echoed back to the operator
func (c *Config) GetMaxOutputLength() int {
	if c.Execution.MaxOutputLength <= 0 {
		return DefaultMaxOutputLength
	}
	return c.Execution.MaxOutputLength
}

// GetModelTimeout returns the round-trip timeout for a model
func (m ModelDefinition) GetModelTimeout() time.Duration {
	if m.TimeoutSeconds <= 0 {
		return DefaultModelTimeout
	}
	return time.Duration(m.TimeoutSeconds) * time.Second
}

// GetMaxFileSize caps files read for viewing or editing
func (c *Config) GetMaxFileSize() int64 {
	if c.Workspace.MaxFileSize <= 0 {
		return DefaultMaxFileSize
	}
	return c.Workspace.MaxFileSize
}

// GetMaxDownloadSize caps files sent back as attachments
func (c *Config) GetMaxDownloadSize() int64 {
	if c.Workspace.MaxDownloadSize <= 0 {
		return DefaultMaxDownloadSize
	}
	return c.Workspace.MaxDownloadSize
}

// GetBackupSuffix returns the suffix appended to backups taken before an edit
func (c *Config) GetBackupSuffix() string {
	if c.Workspace.BackupSuffix == "" {
		return DefaultBackupSuffix
	}
	return c.Workspace.BackupSuffix
}

// GetListLimit returns how many directory entries /ls renders
func (c *Config) GetListLimit() int {
	if c.Workspace.ListLimit <= 0 {
		return DefaultListLimit
	}
	return c.Workspace.ListLimit
}

// GetTaskContextLimit returns how many entries the planner sees
func (c *Config) GetTaskContextLimit() int {
	if c.Workspace.TaskContextLimit <= 0 {
		return DefaultTaskContextLimit
	}
	return c.Workspace.TaskContextLimit
}

// GetProposalTTL returns how long a proposal may stay open; zero disables expiry
func (c *Config) GetProposalTTL() time.Duration {
	if c.Proposals.TTL == "" {
		return DefaultProposalTTL
	}
	ttl, err := time.ParseDuration(c.Proposals.TTL)
	if err != nil || ttl < 0 {
		return DefaultProposalTTL
	}
	return ttl
}

// ShouldReplaceOnConflict reports whether a new proposal displaces an open one
func (c *Config) ShouldReplaceOnConflict() bool {
	return strings.EqualFold(c.Proposals.OnConflict, ConflictReplace)
}

// GetApproveWords returns the affirmative decision tokens
func (c *Config) GetApproveWords() []string {
	if len(c.Proposals.ApproveWords) == 0 {
		return DefaultApproveWords
	}
	return c.Proposals.ApproveWords
}

// GetRejectWords returns the negative decision tokens
func (c *Config) GetRejectWords() []string {
	if len(c.Proposals.RejectWords) == 0 {
		return DefaultRejectWords
	}
	return c.Proposals.RejectWords
}

// GetBlockedCommands returns the static shell blocklist
func (c *Config) GetBlockedCommands() []string {
	if len(c.Security.BlockedCommands) == 0 {
		return DefaultBlockedCommands
	}
	return c.Security.BlockedCommands
}

// ValidateConsistency checks the internal consistency of the configuration
// Returns an error if there are inconsistencies (e.g., default model doesn't exist)
func (c *Config) ValidateConsistency() error {
	if c.Preferences.DefaultModel != "" && len(c.Models) == 0 {
		return fmt.Errorf("default model is set but no models are configured")
	}

	if c.Preferences.DefaultModel != "" && !c.HasModel(c.Preferences.DefaultModel) {
		return fmt.Errorf("default model %s does not exist in models list", c.Preferences.DefaultModel)
	}

	if policy := c.Proposals.OnConflict; policy != "" &&
		!strings.EqualFold(policy, ConflictReject) && !strings.EqualFold(policy, ConflictReplace) {
		return fmt.Errorf("proposals.on_conflict must be %s|%s, got %s", ConflictReject, ConflictReplace, policy)
	}

	return nil
}
