// Package ui drives the Satellite web UI through Chrome with chromedp.
//
// A Browser owns one tab; a Session adds login state and the page objects:
//
//	b, err := ui.NewBrowser(ctx, "https://satellite.example.com", ui.BrowserOptions{Headless: true})
//	s := ui.NewSession(b)
//	err = s.Login(ctx, "admin", "changeme")
//	err = s.Organizations.Create(ctx, ui.OrganizationForm{Name: "ACME"})
//	id, err := s.Jobs.RunFromHost(ctx, hostID, ui.JobForm{Command: "uptime"})
//	status, err := s.Jobs.WaitForStatus(ctx, id)
//
// Form submissions rejected by the server surface as ValidationError with the text of
// the page's #error-alert.
package ui
