package http

const pageTemplates = `
{{define "login"}}<!doctype html>
<html lang="en">
<head>
  <meta http-equiv="content-type" content="text/html; charset=utf-8">
  <title>Login</title>
</head>
<body>
  {{if .Error}}<p><i>{{.Error}}</i></p>{{end}}
  <form action="/login" method="post">
    <label>Username
      <input type="text" placeholder="Enter Username" name="username">
    </label>
    <label>Password
      <input type="password" placeholder="Enter Password" name="password">
    </label>
    <button type="submit">Login</button>
  </form>
</body>
</html>
{{end}}
{{define "dashboard"}}<!doctype html>
<html lang="en">
<head>
  <meta http-equiv="content-type" content="text/html; charset=utf-8">
  <title>Admin dashboard</title>
</head>
<body>
  <p>Welcome {{.Username}}!</p>
  <form action="/admin/logout" method="post">
    <button type="submit">Logout</button>
  </form>
</body>
</html>
{{end}}
`
