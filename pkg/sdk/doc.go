// Package sdk is a typed client for the intakerouter MCP server.
//
// Each MCP tool has one method. Transport failures are retried with fortify;
// tool errors come back as *ToolError and match ErrIntakeNotFound or
// ErrNotRouted through errors.Is.
//
//	transport, _ := client.NewStdioTransport("intakerouter", "mcp")
//	c := sdk.NewClient(transport, sdk.WithActor("portal"))
//	defer c.Close()
//
//	if _, err := c.Initialize(ctx); err != nil { ... }
//	rec, _ := c.Route(ctx, sdk.RouteRequest{Spec: spec})
//	fmt.Println(rec.Result.Path, rec.Result.Score)
package sdk
