// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

/*
Package auth provides optional bearer-token authentication for the API.

Authentication Modes (configured via AUTH_MODE):

  - none: every request passes; /me routes answer 401 because no subject
    is known.
  - jwt: requests must carry "Authorization: Bearer <token>" signed with
    HS256 and JWT_SECRET. The token subject is the rating-store user ID.

Each authenticated subject is throttled by its own token bucket
(USER_RATE_PER_SECOND, USER_RATE_BURST) on top of the per-IP limit applied
by the router.

Usage:

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
	    return err
	}
	mw := auth.NewMiddleware(auth.AuthModeJWT, jwtManager,
	    auth.NewSubjectLimiter(cfg.Security.UserRatePerSecond, cfg.Security.UserRateBurst))
	defer mw.Stop()

	r.Use(func(next http.Handler) http.Handler { return mw.Authenticate(next.ServeHTTP) })

	subject, ok := auth.SubjectFromContext(r.Context())
*/
package auth
