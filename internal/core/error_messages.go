package core

// error_messages.go turns technical errors into messages an office clerk can
// act on. Every message carries a code support staff can look up:
//
//	PRF001 unknown import profile        PRF002 delimiter could not be detected
//	PRF003 invalid profile settings
//	FILE001 file too large               FILE003 encoding error
//	FILE004 no file                      FILE005 empty file
//	VAL001 invalid date                  VAL002 invalid number
//	VAL003 required field empty          VAL004 required column missing
//	VAL006 value not in allowed list     VAL007 mapping names unknown field
//	IMP001 file already imported         IMP002 unknown import type
//	IMP003 import not found             IMP004 import already rolled back
//	UPL002 too many imports              UPL004 request cancelled
//	UPL005 request timed out
//	DB001 duplicate key                  DB003 missing referenced record
//	DB004 database unreachable           DB007 deadlock
//	DB008 missing value for column       DB009 check constraint
//	TPL001 unsupported template format
//	RATE001 rate limited                 ERR000 anything else
//
// Typed errors are matched with errors.Is / errors.As first; the pattern
// table is the fallback for errors that only carry text.

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// UserMessage is a user-facing explanation of an error.
type UserMessage struct {
	Message string `json:"message"`
	Action  string `json:"action"`
	Code    string `json:"code"`
}

// String renders "Message (Code: XXX). Action".
func (m UserMessage) String() string {
	if m.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", m.Message, m.Code, m.Action)
}

type sentinelMessage struct {
	target error
	msg    UserMessage
}

var sentinelMessages = []sentinelMessage{
	{ErrUnknownProfile, UserMessage{"Unknown import profile", "Choose one of: default, polish, international, excel", "PRF001"}},
	{ErrAmbiguousDelimiter, UserMessage{"Could not tell how columns are separated", "Choose an import profile explicitly", "PRF002"}},
	{ErrInvalidProfile, UserMessage{"Import profile settings are invalid", "Contact support", "PRF003"}},
	{ErrFileTooLarge, UserMessage{"File exceeds the maximum size", "Split the file into smaller parts", "FILE001"}},
	{ErrEncoding, UserMessage{"File contains characters that do not match its encoding", "Save the file as UTF-8 or choose the excel profile for Windows-1250 files", "FILE003"}},
	{ErrEmptyFile, UserMessage{"The uploaded file is empty", "Upload a file with a header and data rows", "FILE005"}},
	{ErrMissingRequiredColumn, UserMessage{"Required columns are missing from the file", "Download the template and compare the headers", "VAL004"}},
	{ErrUnknownOverrideField, UserMessage{"The column mapping names a field that does not exist", "Pick target fields from the entity's field list", "VAL007"}},
	{ErrDuplicateFile, UserMessage{"This file was already imported", "Check the import history or confirm the re-import", "IMP001"}},
	{ErrUnknownEntity, UserMessage{"Unknown import type", "Choose one of the listed import types", "IMP002"}},
	{ErrRunNotFound, UserMessage{"Import not found", "Refresh the import history", "IMP003"}},
	{ErrAlreadyRolledBack, UserMessage{"This import was already rolled back", "Refresh the import history", "IMP004"}},
	{ErrUnsupportedFormat, UserMessage{"Template format is not supported", "Choose csv or xlsx", "TPL001"}},
	{ErrTooManyImports, UserMessage{"The system is busy with other imports", "Wait a moment and try again", "UPL002"}},
	{context.Canceled, UserMessage{"Request was cancelled", "Please try again", "UPL004"}},
	{context.DeadlineExceeded, UserMessage{"The import took too long and was stopped", "Split the file or try again later", "UPL005"}},
}

// PostgreSQL SQLSTATE codes with their own message.
var pgCodeMessages = map[string]UserMessage{
	"23505": {"A record with this key already exists", "Remove duplicates from the file", "DB001"},
	"23503": {"Referenced record does not exist", "Import the referenced records first", "DB003"},
	"23502": {"A value required by the database is missing", "Fill in the empty column", "DB008"},
	"23514": {"A value is outside the allowed range", "Check the values against the template", "DB009"},
	"40P01": {"Database was busy with conflicting operations", "Please try again", "DB007"},
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns is matched case-insensitively in order; put specific
// patterns before general ones.
var errorPatterns = []errorPattern{
	{"duplicate key", UserMessage{"A record with this key already exists", "Remove duplicates from the file", "DB001"}},
	{"violates foreign key", UserMessage{"Referenced record does not exist", "Import the referenced records first", "DB003"}},
	{"connection refused", UserMessage{"Unable to connect to the database", "Please try again in a few moments", "DB004"}},
	{"deadlock", UserMessage{"Database was busy with conflicting operations", "Please try again", "DB007"}},
	{"invalid date", UserMessage{"Invalid date format", "Use YYYY-MM-DD or DD.MM.YYYY", "VAL001"}},
	{"invalid number", UserMessage{"Invalid number format", "Use digits with a single decimal separator and no thousands grouping", "VAL002"}},
	{"required field", UserMessage{"Required field is empty", "Fill in all required columns", "VAL003"}},
	{"must be one of", UserMessage{"Value is not in the allowed list", "Check the allowed values in the template", "VAL006"}},
	{"no file provided", UserMessage{"No file was selected", "Select a CSV file to import", "FILE004"}},
	{"rate limit", UserMessage{"Too many requests", "Wait a moment before trying again", "RATE001"}},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts err to a user message. nil maps to the zero message.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, s := range sentinelMessages {
		if errors.Is(err, s.target) {
			return s.msg
		}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if msg, ok := pgCodeMessages[pgErr.Code]; ok {
			return msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}
