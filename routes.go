package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/Zachkp/portfolio/internal/assets"
	"github.com/Zachkp/portfolio/internal/catalog"
	"github.com/Zachkp/portfolio/internal/relay"
)

const (
	msgMissingFields = "Missing required fields"
	msgNotConfigured = "Email service not configured. Set RESEND_API_KEY to enable sending."
	msgTooMany       = "Too many requests. Please wait before sending another message."
)

// Handler returns the site with CORS applied to /api/*.
func (a *App) Handler() http.Handler {
	engine := a.Router()
	api := cors.Handler(cors.Options{
		AllowedOrigins: a.cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "Retry-After"},
		MaxAge:         300,
	})(engine)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			api.ServeHTTP(w, r)
			return
		}
		engine.ServeHTTP(w, r)
	})
}

// Router builds the gin engine.
func (a *App) Router() *gin.Engine {
	r := gin.Default()
	r.Use(requestID())
	r.LoadHTMLGlob(filepath.Join(a.cfg.Templates, "*"))

	r.Static("/images", a.cfg.Images)
	r.Static("/audio", a.cfg.Audio)
	r.Static("/wasm", a.cfg.Wasm)
	r.GET("/static/*file", gin.WrapH(http.StripPrefix("/static/", a.bundle.Handler())))
	r.GET("/thumbs/*file", a.thumbnail)

	r.GET("/", a.page("index.html", "home"))
	r.GET("/projects", a.page("projects.html", "projects"))
	r.GET("/about", a.page("about.html", "about"))
	r.GET("/contact", a.page("contact-page.html", "contact"))
	r.GET("/resume", a.page("resume.html", "resume"))
	r.GET("/resume/download", a.resumeDownload)

	// HTMX contact form endpoint - returns just the form HTML
	r.GET("/contact-form", func(c *gin.Context) {
		c.HTML(http.StatusOK, "contact.html", gin.H{
			"title": "Contact Me",
		})
	})
	r.POST("/contact", a.guard.middleware(func(c *gin.Context) {
		c.HTML(http.StatusTooManyRequests, "contact-error.html", gin.H{"error": msgTooMany})
	}), a.contactForm)

	api := r.Group("/api")
	api.POST("/contact", a.guard.middleware(func(c *gin.Context) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": msgTooMany})
	}), a.contactAPI)
	api.GET("/contact/config", a.contactConfig)
	api.GET("/playlist", a.playlist)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		c.HTML(http.StatusNotFound, "error.html", gin.H{
			"status":  http.StatusNotFound,
			"message": "This page doesn't exist.",
		})
	})

	return r
}

// requestID tags every request and response with an X-Request-ID.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// pageData gathers what every full page renders: the profile for the
// header and footer, and the active nav entry.
func (a *App) pageData(c *gin.Context, active string) (gin.H, error) {
	ctx := c.Request.Context()
	profile, err := a.catalog.Profile(ctx)
	if err != nil {
		return nil, err
	}
	projects, err := a.catalog.Projects(ctx)
	if err != nil {
		return nil, err
	}
	resume, err := a.catalog.Resume(ctx)
	if err != nil {
		return nil, err
	}
	return gin.H{
		"active":   active,
		"profile":  profile,
		"projects": projects,
		"resume":   resume,
	}, nil
}

func (a *App) page(name, active string) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := a.pageData(c, active)
		if err != nil {
			a.renderError(c, err)
			return
		}
		c.HTML(http.StatusOK, name, data)
	}
}

func (a *App) renderError(c *gin.Context, err error) {
	log.Printf("level=error msg=\"render failed\" path=%s request_id=%s err=%q",
		c.Request.URL.Path, c.GetString("request_id"), err)
	c.HTML(http.StatusInternalServerError, "error.html", gin.H{
		"status":  http.StatusInternalServerError,
		"message": "Something went wrong loading this page.",
	})
}

// resumeDownload serves the resume as a standalone printable document.
func (a *App) resumeDownload(c *gin.Context) {
	data, err := a.pageData(c, "resume")
	if err != nil {
		a.renderError(c, err)
		return
	}
	profile := data["profile"].(catalog.Profile)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.html"`, profile.ResumeFileStem()))
	c.HTML(http.StatusOK, "resume-document.html", data)
}

func (a *App) thumbnail(c *gin.Context) {
	name := strings.TrimPrefix(c.Param("file"), "/")
	data, err := a.thumbs.Get(name)
	switch {
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, assets.ErrInvalidName):
		c.Status(http.StatusNotFound)
		return
	case err != nil:
		log.Printf("level=error msg=\"thumbnail failed\" file=%s err=%q", name, err)
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "image/webp", data)
}

// Handle contact form submission with HTMX
func (a *App) contactForm(c *gin.Context) {
	msg := relay.Message{
		Name:    c.PostForm("fullName"),
		Email:   c.PostForm("email"),
		Message: c.PostForm("message"),
	}
	if msg.Name == "" {
		msg.Name = c.PostForm("name")
	}

	_, err := a.relay.Send(c.Request.Context(), msg)
	switch {
	case errors.Is(err, relay.ErrMissingFields):
		c.HTML(http.StatusOK, "contact-error.html", gin.H{
			"error": "Please fill in your name, email and message.",
		})
		return
	case err != nil:
		c.HTML(http.StatusOK, "contact-error.html", gin.H{
			"error": "Sorry, there was an error sending your message. Please try again later.",
		})
		return
	}

	c.Set(contactSentKey, true)
	c.HTML(http.StatusOK, "contact-success.html", gin.H{
		"success": "Thank you for your message! I'll get back to you soon.",
	})
}

// contactAPI is the JSON relay. Status codes and error texts are part of
// the public contract.
func (a *App) contactAPI(c *gin.Context) {
	var msg relay.Message
	if err := c.ShouldBindJSON(&msg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgMissingFields})
		return
	}

	id, err := a.relay.Send(c.Request.Context(), msg)
	if err != nil {
		status, text := contactErrorResponse(err)
		c.JSON(status, gin.H{"error": text})
		return
	}

	c.Set(contactSentKey, true)
	c.JSON(http.StatusOK, gin.H{"id": id})
}

func contactErrorResponse(err error) (int, string) {
	var perr *relay.ProviderError
	switch {
	case errors.Is(err, relay.ErrMissingFields):
		return http.StatusBadRequest, msgMissingFields
	case errors.Is(err, relay.ErrNotConfigured):
		return http.StatusNotImplemented, msgNotConfigured
	case errors.As(err, &perr):
		return http.StatusInternalServerError, "Failed to send email: " + perr.Body
	case err.Error() != "":
		return http.StatusInternalServerError, err.Error()
	default:
		return http.StatusInternalServerError, "Send failed"
	}
}

func (a *App) contactConfig(c *gin.Context) {
	resp := gin.H{
		"configured": a.relay.Configured(),
		"provider":   a.relay.Provider(),
	}
	if a.client.Enabled() {
		resp["emailjs"] = a.client
	}
	c.JSON(http.StatusOK, resp)
}

func (a *App) playlist(c *gin.Context) {
	tracks, err := a.catalog.Playlist(c.Request.Context())
	if err != nil {
		log.Printf("level=error msg=\"playlist failed\" err=%q", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load playlist"})
		return
	}
	if tracks == nil {
		tracks = []catalog.Track{}
	}
	c.JSON(http.StatusOK, gin.H{"tracks": tracks})
}
