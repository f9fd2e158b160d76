package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"isitpayday/internal/app"
	"isitpayday/internal/domain/payday"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const (
	msgUnauthorized    = "Error: you are not allowed to run this command."
	addProfileUsage    = "Usage: /add_profile <name> <country> <frequency> [rule=...] [day=N] [anchor=YYYY-MM-DD] [weekday=friday] [offset=N]"
	removeProfileUsage = "Usage: /remove_profile <id>"
	profileOptions     = "rule=, day=, anchor=, weekday=, offset="
)

// ProfileManager is implemented by app.ProfileService.
type ProfileManager interface {
	IsAdmin(telegramID int64) bool
	List(ctx context.Context) ([]*payday.Profile, error)
	AddProfileAsAdmin(ctx context.Context, performingAdminID int64, name string, params payday.Params) (*payday.Profile, error)
	RemoveProfileAsAdmin(ctx context.Context, performingAdminID int64, id int64) error
}

// RegisterAdminHandlers registers /help and the profile management commands.
func RegisterAdminHandlers(ctx context.Context, b *telebot.Bot, profiles ProfileManager, baseLogger *logrus.Entry) {
	b.Handle("/help", func(c telebot.Context) error {
		return c.Send(HelpText(profiles.IsAdmin(c.Sender().ID)), &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	})

	b.Handle("/add_profile", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/add_profile",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")
		return c.Send(AddProfileReply(ctx, profiles, c.Sender().ID, c.Args(), handlerLogger))
	})

	b.Handle("/remove_profile", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/remove_profile",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")
		return c.Send(RemoveProfileReply(ctx, profiles, c.Sender().ID, c.Args(), handlerLogger))
	})

	b.Handle("/profiles", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/profiles",
			"sender_id": c.Sender().ID,
		})
		return c.Send(ListProfilesReply(ctx, profiles, c.Sender().ID, handlerLogger))
	})
}

// HelpText lists the commands available to a user.
func HelpText(isAdmin bool) string {
	var b strings.Builder
	b.WriteString("Available commands:\n\n")
	b.WriteString("`/payday`\n - Show the next payday of every profile.\n\n")
	if isAdmin {
		b.WriteString("`/profiles`\n - List stored profiles with their IDs.\n\n")
		b.WriteString("`/add_profile <name> <country> <frequency> [options]`\n - Add a profile. Options: " + profileOptions + "\n\n")
		b.WriteString("`/remove_profile <id>`\n - Remove a profile.\n\n")
	}
	b.WriteString("`/help`\n - Show this message.")
	return b.String()
}

// AddProfileReply runs /add_profile and returns the chat reply.
func AddProfileReply(ctx context.Context, profiles ProfileManager, senderID int64, args []string, logger *logrus.Entry) string {
	if !profiles.IsAdmin(senderID) {
		logger.Warn("Unauthorized access attempt")
		return msgUnauthorized
	}

	name, params, err := ParseProfileArgs(args)
	if err != nil {
		logger.WithError(err).Warn("Invalid command format")
		return fmt.Sprintf("%s\n%s", err, addProfileUsage)
	}
	logger = logger.WithField("name", name)

	p, err := profiles.AddProfileAsAdmin(ctx, senderID, name, params)
	if err != nil {
		logWithError := logger.WithError(err)
		switch {
		case errors.Is(err, app.ErrAdminNotAuthorized):
			logWithError.Warn("Admin not authorized (service level)")
			return msgUnauthorized
		case errors.Is(err, payday.ErrValidation), errors.Is(err, payday.ErrCalculation):
			logWithError.Warn("Rejected profile configuration")
			return fmt.Sprintf("Error: %s", err)
		case errors.Is(err, payday.ErrDuplicateProfileName):
			logWithError.Warn("Profile already exists")
			return fmt.Sprintf("Error: a profile named %q already exists.", name)
		case errors.Is(err, payday.ErrProfilesReadOnly):
			return "Error: profiles are read-only without a database."
		default:
			logWithError.Error("Failed to add profile")
			return fmt.Sprintf("Failed to add profile: %s", err)
		}
	}

	logger.WithField("profile_id", p.ID).Info("Profile added successfully")
	return fmt.Sprintf("Profile %s (ID: %d) added.", p.Name, p.ID)
}

// RemoveProfileReply runs /remove_profile and returns the chat reply.
func RemoveProfileReply(ctx context.Context, profiles ProfileManager, senderID int64, args []string, logger *logrus.Entry) string {
	if !profiles.IsAdmin(senderID) {
		logger.Warn("Unauthorized access attempt")
		return msgUnauthorized
	}
	if len(args) != 1 {
		return removeProfileUsage
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		logger.WithField("arg", args[0]).Warn("Invalid profile ID format")
		return "Error: profile ID must be a number."
	}
	logger = logger.WithField("profile_id", id)

	if err := profiles.RemoveProfileAsAdmin(ctx, senderID, id); err != nil {
		logWithError := logger.WithError(err)
		switch {
		case errors.Is(err, app.ErrAdminNotAuthorized):
			logWithError.Warn("Admin not authorized (service level)")
			return msgUnauthorized
		case errors.Is(err, payday.ErrProfileNotFound):
			logWithError.Warn("Profile to remove not found")
			return fmt.Sprintf("Profile %d not found.", id)
		case errors.Is(err, payday.ErrProfilesReadOnly):
			return "Error: profiles are read-only without a database."
		default:
			logWithError.Error("Failed to remove profile")
			return fmt.Sprintf("Failed to remove profile: %s", err)
		}
	}

	logger.Info("Profile removed successfully")
	return fmt.Sprintf("Profile %d removed.", id)
}

// ListProfilesReply runs /profiles and returns the chat reply.
func ListProfilesReply(ctx context.Context, profiles ProfileManager, senderID int64, logger *logrus.Entry) string {
	if !profiles.IsAdmin(senderID) {
		logger.Warn("Unauthorized access attempt")
		return msgUnauthorized
	}

	list, err := profiles.List(ctx)
	if err != nil {
		logger.WithError(err).Error("Failed to list profiles")
		return fmt.Sprintf("Failed to list profiles: %s", err)
	}
	if len(list) == 0 {
		return "No profiles stored."
	}

	var b strings.Builder
	b.WriteString("--- Profiles ---\n")
	for _, p := range list {
		fmt.Fprintf(&b, "ID: %d, Name: %s, Country: %s, Frequency: %s", p.ID, p.Name, p.Config.Country, p.Config.Frequency)
		if p.Config.MonthlyRule != "" {
			fmt.Fprintf(&b, ", Rule: %s", p.Config.MonthlyRule)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// ParseProfileArgs reads "<name> <country> <frequency> [key=value...]".
func ParseProfileArgs(args []string) (string, payday.Params, error) {
	if len(args) < 3 {
		return "", payday.Params{}, errors.New("name, country and frequency are required")
	}
	params := payday.Params{Country: args[1], Frequency: args[2]}

	for _, opt := range args[3:] {
		key, value, ok := strings.Cut(opt, "=")
		if !ok || value == "" {
			return "", payday.Params{}, fmt.Errorf("option %q must be key=value", opt)
		}
		key = strings.ToLower(key)
		switch key {
		case "rule":
			params.MonthlyRule = value
		case "anchor":
			params.AnchorDate = value
		case "day", "offset":
			n, err := strconv.Atoi(value)
			if err != nil {
				return "", payday.Params{}, fmt.Errorf("option %s must be a number", key)
			}
			if key == "day" {
				params.SpecificDay = &n
			} else {
				params.BankOffset = &n
			}
		case "weekday":
			wd, err := payday.ParseWeekday(value)
			if err != nil {
				return "", payday.Params{}, err
			}
			idx := payday.WeekdayIndex(wd)
			params.Weekday = &idx
		default:
			return "", payday.Params{}, fmt.Errorf("unknown option %q", key)
		}
	}
	return args[0], params, nil
}
