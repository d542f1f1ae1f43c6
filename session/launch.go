// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package session

import (
	"github.com/pkg/errors"

	auth "blitznote.com/src/caddy.lti/oauth1.auth"
)

// Names of launch parameters, LTI 1.1.
const (
	ParamDisplayName = "lis_person_name_full"
	ParamUserID      = "user_id"
)

// Launch is the identity and context a platform asserts on a launch.
//
// Only DisplayName is required; anything else is passed through as sent.
type Launch struct {
	DisplayName string
	UserID      string
	GivenName   string
	FamilyName  string
	Email       string
	Username    string
	Roles       string
	SourcedID   string

	ContextID    string
	ContextType  string
	ContextLabel string
	ContextTitle string

	ResourceLinkID          string
	ResourceLinkTitle       string
	ResourceLinkDescription string

	MessageType string
	LTIVersion  string
	ConsumerKey string

	ToolConsumerInstanceGUID string
	ToolConsumerInstanceName string
	ToolConsumerFamilyCode   string
	ToolConsumerVersion      string

	OutcomeServiceURL string
	ResultSourcedID   string
	Locale            string
	DocumentTarget    string
	ReturnURL         string
}

// fields maps parameter names to where they go in a Launch.
var fields = map[string]func(*Launch) *string{
	ParamDisplayName:                         func(l *Launch) *string { return &l.DisplayName },
	ParamUserID:                              func(l *Launch) *string { return &l.UserID },
	"lis_person_name_given":                  func(l *Launch) *string { return &l.GivenName },
	"lis_person_name_family":                 func(l *Launch) *string { return &l.FamilyName },
	"lis_person_contact_email_primary":       func(l *Launch) *string { return &l.Email },
	"ext_user_username":                      func(l *Launch) *string { return &l.Username },
	"roles":                                  func(l *Launch) *string { return &l.Roles },
	"lis_person_sourcedid":                   func(l *Launch) *string { return &l.SourcedID },
	"context_id":                             func(l *Launch) *string { return &l.ContextID },
	"context_type":                           func(l *Launch) *string { return &l.ContextType },
	"context_label":                          func(l *Launch) *string { return &l.ContextLabel },
	"context_title":                          func(l *Launch) *string { return &l.ContextTitle },
	"resource_link_id":                       func(l *Launch) *string { return &l.ResourceLinkID },
	"resource_link_title":                    func(l *Launch) *string { return &l.ResourceLinkTitle },
	"resource_link_description":              func(l *Launch) *string { return &l.ResourceLinkDescription },
	"lti_message_type":                       func(l *Launch) *string { return &l.MessageType },
	"lti_version":                            func(l *Launch) *string { return &l.LTIVersion },
	auth.ConsumerKeyParam:                    func(l *Launch) *string { return &l.ConsumerKey },
	"tool_consumer_instance_guid":            func(l *Launch) *string { return &l.ToolConsumerInstanceGUID },
	"tool_consumer_instance_name":            func(l *Launch) *string { return &l.ToolConsumerInstanceName },
	"tool_consumer_info_product_family_code": func(l *Launch) *string { return &l.ToolConsumerFamilyCode },
	"tool_consumer_info_version":             func(l *Launch) *string { return &l.ToolConsumerVersion },
	"lis_outcome_service_url":                func(l *Launch) *string { return &l.OutcomeServiceURL },
	"lis_result_sourcedid":                   func(l *Launch) *string { return &l.ResultSourcedID },
	"launch_presentation_locale":             func(l *Launch) *string { return &l.Locale },
	"launch_presentation_document_target":    func(l *Launch) *string { return &l.DocumentTarget },
	"launch_presentation_return_url":         func(l *Launch) *string { return &l.ReturnURL },
}

// ExtractLaunch picks the launch attributes from verified parameters.
//
// Of repeated parameters the first one wins.
// Fails with auth.ErrMissingRequiredAttribute if the display name is absent.
func ExtractLaunch(pairs []auth.Pair) (Launch, error) {
	var (
		l    Launch
		seen = make(map[string]bool, len(fields))
	)
	for _, p := range pairs {
		field, known := fields[p.Key]
		if !known || seen[p.Key] {
			continue
		}
		seen[p.Key] = true
		*field(&l) = p.Value
	}

	if !seen[ParamDisplayName] {
		return l, errors.Wrap(auth.ErrMissingRequiredAttribute, ParamDisplayName)
	}
	return l, nil
}
