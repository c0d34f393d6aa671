// Package http exposes the mood journal over JSON.
//
// POST /sessions takes {"name","email","preferred_language"} and returns
// {"token","expires_at","user"}; the token is also set as the `session_token`
// cookie and the `X-Session-Token` header. Every other route requires the
// token as a Bearer header or cookie and operates on that session's
// workspace:
//   - /checkins and /checkins/draft[/factors|/next|/back|/finish]: history and
//     the five step capture wizard.
//   - /dashboard, /calendar?date=YYYY-MM-DD, /calendar/{year}/{month}.
//   - /resources?type=, /favorites, /favorites/{id}, /recommendations.
//   - /companion/session, /companion/messages and the /companion/ws websocket.
//   - /notifications, /affirmation.
//
// Errors are {"error_code","message","errors"} with 401 for session problems,
// 404 for unknown items, 409 for state conflicts and 422 for invalid input.
package http
