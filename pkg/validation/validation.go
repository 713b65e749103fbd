// Package validation checks form input before anything is sent to the server.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	clierrors "github.com/blogdeck/blogdeck/cli/pkg/errors"
)

// MaxCommentLength is the longest comment accepted, in characters
const MaxCommentLength = 500

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type postForm struct {
	Title   string `json:"title" validate:"required,min=5"`
	Content string `json:"content" validate:"required,min=20"`
}

type commentForm struct {
	CommentText string `json:"commentText" validate:"required,max=500"`
}

type loginForm struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=6"`
}

type registerForm struct {
	Username        string `json:"username" validate:"required,min=3,max=30,alphanum"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"eqfield=Password"`
}

type changePasswordForm struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,nefield=CurrentPassword"`
	ConfirmPassword string `json:"confirmPassword" validate:"eqfield=NewPassword"`
}

type forgotPasswordForm struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordForm struct {
	Token           string `json:"token" validate:"required"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"eqfield=Password"`
}

// messages maps "<form>.<field>.<tag>" to the text shown to the user
var messages = map[string]string{
	"postForm.title.required":   "Please fill in both title and content",
	"postForm.title.min":        "Title must be at least 5 characters long",
	"postForm.content.required": "Please fill in both title and content",
	"postForm.content.min":      "Content must be at least 20 characters long",

	"postEditForm.title.required":   "Title is required",
	"postEditForm.title.min":        "Title must be at least 5 characters long",
	"postEditForm.content.required": "Content is required",
	"postEditForm.content.min":      "Content must be at least 20 characters long",

	"commentForm.commentText.required": "Comment cannot be empty",
	"commentForm.commentText.max":      "Comment cannot exceed 500 characters",

	"loginForm.username.required": "Please fill in all fields",
	"loginForm.username.min":      "Username must be at least 3 characters long",
	"loginForm.password.required": "Please fill in all fields",
	"loginForm.password.min":      "Password must be at least 6 characters long",

	"registerForm.username.required":       "Please fill in all fields",
	"registerForm.username.min":            "Username must be at least 3 characters long",
	"registerForm.username.max":            "Username must be at most 30 characters long",
	"registerForm.username.alphanum":       "Username must only contain letters and numbers",
	"registerForm.email.required":          "Please fill in all fields",
	"registerForm.email.email":             "Please enter a valid email address",
	"registerForm.password.required":       "Please fill in all fields",
	"registerForm.password.min":            "Password must be at least 6 characters long",
	"registerForm.confirmPassword.eqfield": "Passwords do not match",

	"changePasswordForm.currentPassword.required": "Please fill in all fields",
	"changePasswordForm.newPassword.required":     "Please fill in all fields",
	"changePasswordForm.newPassword.min":          "New password must be at least 6 characters long",
	"changePasswordForm.newPassword.nefield":      "New password must be different from current password",
	"changePasswordForm.confirmPassword.eqfield":  "New passwords do not match",

	"forgotPasswordForm.email.required": "Please enter your email address",
	"forgotPasswordForm.email.email":    "Please enter a valid email address",

	"resetPasswordForm.token.required":          "This password reset link is invalid or malformed",
	"resetPasswordForm.password.required":       "Please fill in all fields",
	"resetPasswordForm.password.min":            "Password must be at least 6 characters long",
	"resetPasswordForm.confirmPassword.eqfield": "Passwords do not match",
}

func check(form interface{}) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make([]clierrors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		key := fe.Namespace() + "." + fe.Tag()
		msg, ok := messages[key]
		if !ok {
			msg = fe.Field() + " is invalid"
		}
		fields = append(fields, clierrors.FieldError{Field: fe.Field(), Message: msg})
	}
	if len(fields) == 0 {
		return nil
	}
	return clierrors.ValidationErrors(fields)
}

// Post validates a new post. Surrounding whitespace does not count.
func Post(title, content string) error {
	return check(postForm{Title: strings.TrimSpace(title), Content: strings.TrimSpace(content)})
}

// PostEdit validates the fields being changed; nil fields are skipped.
// Each field is checked on its own value since required on a pointer only
// rejects nil.
func PostEdit(title, content *string) error {
	var fields []clierrors.FieldError
	if title != nil {
		if fe := checkVar("postEditForm", "title", strings.TrimSpace(*title), "required,min=5"); fe != nil {
			fields = append(fields, *fe)
		}
	}
	if content != nil {
		if fe := checkVar("postEditForm", "content", strings.TrimSpace(*content), "required,min=20"); fe != nil {
			fields = append(fields, *fe)
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return clierrors.ValidationErrors(fields)
}

// checkVar validates a single value and reports the first failed tag
func checkVar(form, field, value, tags string) *clierrors.FieldError {
	err := validate.Var(value, tags)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &clierrors.FieldError{Field: field, Message: field + " is invalid"}
	}
	msg, ok := messages[form+"."+field+"."+verrs[0].Tag()]
	if !ok {
		msg = field + " is invalid"
	}
	return &clierrors.FieldError{Field: field, Message: msg}
}

// Comment validates comment text after trimming
func Comment(text string) error {
	return check(commentForm{CommentText: strings.TrimSpace(text)})
}

func Login(username, password string) error {
	return check(loginForm{Username: strings.TrimSpace(username), Password: password})
}

func Register(username, email, password, confirmPassword string) error {
	return check(registerForm{
		Username:        strings.TrimSpace(username),
		Email:           strings.TrimSpace(email),
		Password:        password,
		ConfirmPassword: confirmPassword,
	})
}

func ChangePassword(currentPassword, newPassword, confirmPassword string) error {
	return check(changePasswordForm{
		CurrentPassword: currentPassword,
		NewPassword:     newPassword,
		ConfirmPassword: confirmPassword,
	})
}

func ForgotPassword(email string) error {
	return check(forgotPasswordForm{Email: strings.TrimSpace(email)})
}

func ResetPassword(token, password, confirmPassword string) error {
	return check(resetPasswordForm{
		Token:           strings.TrimSpace(token),
		Password:        password,
		ConfirmPassword: confirmPassword,
	})
}
