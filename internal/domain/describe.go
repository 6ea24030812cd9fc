package domain

import (
	"errors"
	"fmt"
)

// Describe converts any error into the text shown to the operator.
func Describe(err error) string {
	if err == nil {
		return ""
	}

	var e *Error
	if !errors.As(err, &e) {
		return fmt.Sprintf("❌ Error: `%v`", err)
	}

	switch e.Kind {
	case KindNotFound:
		return fmt.Sprintf("❌ File not found: `%s`", e.Target)
	case KindAlreadyExists:
		return fmt.Sprintf("⚠️ File already exists: `%s`\nUse `/edit` to modify it, or choose a different name.", e.Target)
	case KindTooLarge:
		return fmt.Sprintf("❌ File too large: `%s` (%s).", e.Target, e.Detail)
	case KindBinaryContent:
		return fmt.Sprintf("❌ Binary file, can't display or edit: `%s`. Use `/file` to download.", e.Target)
	case KindPermissionDenied:
		return fmt.Sprintf("❌ Permission denied: `%s`", e.Target)
	case KindBlocked:
		return fmt.Sprintf("🚫 *Blocked* by safety blocklist:\n`%s`", e.Target)
	case KindTimeout:
		return fmt.Sprintf("⏰ *Timed out* after %s: `%s`", e.Detail, e.Target)
	case KindCollaborator:
		return fmt.Sprintf("❌ %s failed: `%v`", e.Target, e.Err)
	case KindNoPending:
		return "ℹ️ No pending action to approve."
	case KindProposalPending:
		return fmt.Sprintf("⏳ A %s proposal is still waiting. Reply ✅ to apply or ❌ to cancel it first.", e.Target)
	case KindProposalExpired:
		return fmt.Sprintf("⌛ The %s proposal expired after %s and was discarded. Send the request again.", e.Target, e.Detail)
	case KindInvalidInput:
		return "⚠️ " + e.Detail
	case KindNotADirectory:
		return fmt.Sprintf("❌ Not a directory: `%s`", e.Target)
	case KindFileChanged:
		return fmt.Sprintf("⚠️ `%s` changed since the edit was proposed. Nothing was written; send the `/edit` again.", e.Target)
	case KindIsADirectory:
		return "❌ That's a directory. Use `/ls` instead."
	default:
		return fmt.Sprintf("❌ Error: `%v`", err)
	}
}
