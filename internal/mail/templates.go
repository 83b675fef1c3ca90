// Syncify - Collaborative Project Workspace Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/syncify

package mail

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"net/url"
	"strings"
	texttemplate "text/template"
	"time"
)

// InvitationExpiry is how long an invitation token stays valid.
const InvitationExpiry = 7 * 24 * time.Hour

// Invitation holds the fields of an invitation email.
type Invitation struct {
	InvitedEmail string
	ProjectTitle string
	InviterEmail string
	InviterName  string
	Role         string
	Token        string
}

type invitationView struct {
	Inviter    string
	Project    string
	Role       string
	AcceptURL  string
	DeclineURL string
}

var invitationHTML = htmltemplate.Must(htmltemplate.New("invitation").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <h1 style="background-color: #4f46e5; color: white; padding: 20px; text-align: center;">Project Invitation</h1>
    <p>Hello,</p>
    <p><strong>{{.Inviter}}</strong> has invited you to join the project <strong>"{{.Project}}"</strong> as a <strong>{{.Role}}</strong>.</p>
    <p>
      <a href="{{.AcceptURL}}">Accept Invitation</a>
      <a href="{{.DeclineURL}}">Decline Invitation</a>
    </p>
    <p style="font-size: 12px; color: #6b7280;">This invitation will expire in 7 days.</p>
    <p style="font-size: 12px; color: #6b7280;">This is an automated message from Syncify. Please do not reply to this email.</p>
  </div>
</body>
</html>
`))

var invitationText = texttemplate.Must(texttemplate.New("invitation").Parse(`Hello,

{{.Inviter}} has invited you to join the project "{{.Project}}" as a {{.Role}}.

Accept invitation: {{.AcceptURL}}
Decline invitation: {{.DeclineURL}}

This invitation will expire in 7 days.

This is an automated message from Syncify. Please do not reply to this email.
`))

// BuildInvitation renders the invitation email. Links point at frontendURL.
func BuildInvitation(frontendURL string, inv Invitation) (Message, error) {
	base := strings.TrimSuffix(frontendURL, "/")
	token := url.QueryEscape(inv.Token)

	inviter := inv.InviterName
	if inviter == "" {
		inviter, _, _ = strings.Cut(inv.InviterEmail, "@")
	}
	project := inv.ProjectTitle
	if project == "" {
		project = "Untitled Project"
	}

	view := invitationView{
		Inviter:    inviter,
		Project:    project,
		Role:       inv.Role,
		AcceptURL:  base + "/invitations/accept?token=" + token,
		DeclineURL: base + "/invitations/decline?token=" + token,
	}

	var html, text bytes.Buffer
	if err := invitationHTML.Execute(&html, view); err != nil {
		return Message{}, fmt.Errorf("render invitation html: %w", err)
	}
	if err := invitationText.Execute(&text, view); err != nil {
		return Message{}, fmt.Errorf("render invitation text: %w", err)
	}

	return Message{
		To:      inv.InvitedEmail,
		Subject: "Invitation to join project: " + project,
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}

// BuildReminder renders the due-task reminder sent to an assignee.
func BuildReminder(to, title string, due time.Time) Message {
	return Message{
		To:      to,
		Subject: "Task due soon: " + title,
		Text:    fmt.Sprintf("Your task \"%s\" is due on %s.", title, due.UTC().Format(time.RFC3339)),
	}
}
