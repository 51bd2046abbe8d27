/*
Package accountsdk is a client for the spacehub accounts service.

# Client vs Session

Client covers the public endpoints: signup, verification, login, password
recovery, invitation acceptance and the health probes. Every call that signs
someone in returns a *Session, which carries the bearer token for the
authenticated endpoints.

	client := accountsdk.NewClient("https://accounts.example.com")

	acct, err := client.Signup(ctx, accountsdk.SignupRequest{
		Email:           "ana@example.com",
		Password:        "s3cretpass",
		PasswordConfirm: "s3cretpass",
		Role:            "customer",
	})

	// The code arrives by email.
	session, err := client.VerifyOTP(ctx, "ana@example.com", "482913")

	me, err := session.Me(ctx)

# Password rotation

The service rejects any token issued before the account's last password
change. Session.UpdatePassword therefore swaps in the token returned by the
server, and other sessions for the same account stop working.

# Errors

Non-2xx responses are returned as *APIError. Use IsCode to branch on the
error kind:

	if accountsdk.IsCode(err, accountsdk.CodeNotVerified) {
		_ = client.ResendOTP(ctx, email)
	}
*/
package accountsdk
