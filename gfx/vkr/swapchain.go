// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"github.com/devblok/prism/core"
	"github.com/devblok/prism/gfx"
	vk "github.com/devblok/vulkan"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Supports tells whether e lies within the image extent bounds, componentwise.
func (c SurfaceCapabilities) Supports(e core.Extent) bool {
	return e.Width >= c.MinImageExtent.Width && e.Width <= c.MaxImageExtent.Width &&
		e.Height >= c.MinImageExtent.Height && e.Height <= c.MaxImageExtent.Height
}

// ImageCount returns the number of swapchain images to request: one more
// than the minimum, capped by the maximum when the surface has one.
func ImageCount(caps SurfaceCapabilities) uint32 {
	count := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && count > caps.MaxImageCount {
		count = caps.MaxImageCount
	}
	return count
}

var compositeAlphaPreference = []vk.CompositeAlphaFlagBits{
	vk.CompositeAlphaOpaqueBit,
	vk.CompositeAlphaPreMultipliedBit,
	vk.CompositeAlphaPostMultipliedBit,
	vk.CompositeAlphaInheritBit,
}

func compositeAlpha(supported vk.CompositeAlphaFlags) vk.CompositeAlphaFlagBits {
	for _, flag := range compositeAlphaPreference {
		if supported&vk.CompositeAlphaFlags(flag) != 0 {
			return flag
		}
	}
	return vk.CompositeAlphaOpaqueBit
}

// createRenderPass creates the single subpass, single color attachment
// pass every framebuffer of the chain is built against.
func createRenderPass(device Device, format vk.Format) (vk.RenderPass, error) {
	attachments := []vk.AttachmentDescription{{
		Format:         format,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutPresentSrc,
	}}

	colorAttachmentRef := []vk.AttachmentReference{{
		Attachment: 0,
		Layout:     vk.ImageLayoutColorAttachmentOptimal,
	}}

	subpassDependency := vk.SubpassDependency{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		SrcAccessMask: 0,
		DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentReadBit | vk.AccessColorAttachmentWriteBit),
	}

	subpass := vk.SubpassDescription{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: uint32(len(colorAttachmentRef)),
		PColorAttachments:    colorAttachmentRef,
	}

	return device.CreateRenderPass(&vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{subpassDependency},
	})
}

// presentationChain owns the swapchain, one view per swapchain image and one
// framebuffer per view. Either all of them exist or none do.
type presentationChain struct {
	device Device
	format vk.SurfaceFormat
	extent core.Extent

	swapchain    vk.Swapchain
	images       []vk.Image
	views        []vk.ImageView
	framebuffers []vk.Framebuffer

	resources gfx.Group
}

// newPresentationChain validates the extent against the surface limits and
// builds the whole chain. Nothing is created when the extent is unsupported.
func newPresentationChain(physical Physical, device Device, sel Selection, surface vk.Surface,
	renderPass vk.RenderPass, extent core.Extent, logger log.FieldLogger) (*presentationChain, error) {

	caps, err := physical.SurfaceCapabilities(sel.Adapter, surface)
	if err != nil {
		return nil, errors.Wrap(err, "surface capabilities")
	}
	if !caps.Supports(extent) {
		return nil, errors.Wrapf(core.ErrUnsupportedExtent, "%dx%d outside [%dx%d, %dx%d]",
			extent.Width, extent.Height,
			caps.MinImageExtent.Width, caps.MinImageExtent.Height,
			caps.MaxImageExtent.Width, caps.MaxImageExtent.Height)
	}

	c := &presentationChain{
		device: device,
		format: sel.Format,
		extent: extent,
	}
	if err := c.createSwapchain(caps, surface); err != nil {
		c.teardown()
		return nil, err
	}
	if err := c.createImageViews(); err != nil {
		c.teardown()
		return nil, err
	}
	if err := c.createFramebuffers(renderPass); err != nil {
		c.teardown()
		return nil, err
	}

	logger.WithFields(log.Fields{
		"width":  extent.Width,
		"height": extent.Height,
		"images": len(c.images),
	}).Info("swapchain created")
	return c, nil
}

func (c *presentationChain) createSwapchain(caps SurfaceCapabilities, surface vk.Surface) error {
	swapchain, err := c.device.CreateSwapchain(&vk.SwapchainCreateInfo{
		SType:           vk.StructureTypeSwapchainCreateInfo,
		Surface:         surface,
		MinImageCount:   ImageCount(caps),
		ImageFormat:     c.format.Format,
		ImageColorSpace: c.format.ColorSpace,
		ImageExtent: vk.Extent2D{
			Width:  c.extent.Width,
			Height: c.extent.Height,
		},
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		PreTransform:     caps.Transform,
		CompositeAlpha:   compositeAlpha(caps.CompositeAlpha),
		PresentMode:      vk.PresentModeFifo,
		Clipped:          vk.True,
		ImageArrayLayers: 1,
		ImageSharingMode: vk.SharingModeExclusive,
	})
	if err != nil {
		return err
	}
	c.swapchain = swapchain
	c.resources.AddFunc(func() {
		c.device.DestroySwapchain(swapchain)
		c.swapchain = nil
		c.images = nil
	})

	images, err := c.device.SwapchainImages(swapchain)
	if err != nil {
		return err
	}
	c.images = images
	return nil
}

func (c *presentationChain) createImageViews() error {
	for idx, image := range c.images {
		view, err := c.device.CreateImageView(&vk.ImageViewCreateInfo{
			SType:    vk.StructureTypeImageViewCreateInfo,
			Image:    image,
			ViewType: vk.ImageViewType2d,
			Format:   c.format.Format,
			Components: vk.ComponentMapping{
				R: vk.ComponentSwizzleIdentity,
				G: vk.ComponentSwizzleIdentity,
				B: vk.ComponentSwizzleIdentity,
				A: vk.ComponentSwizzleIdentity,
			},
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
				BaseMipLevel:   0,
				LevelCount:     1,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
		})
		if err != nil {
			return errors.Wrapf(err, "image view %d", idx)
		}
		c.views = append(c.views, view)
		c.resources.AddFunc(func() {
			c.device.DestroyImageView(view)
		})
	}
	c.resources.AddFunc(func() {
		c.views = nil
	})
	return nil
}

func (c *presentationChain) createFramebuffers(renderPass vk.RenderPass) error {
	for idx, view := range c.views {
		framebuffer, err := c.device.CreateFramebuffer(&vk.FramebufferCreateInfo{
			SType:           vk.StructureTypeFramebufferCreateInfo,
			RenderPass:      renderPass,
			AttachmentCount: 1,
			PAttachments:    []vk.ImageView{view},
			Width:           c.extent.Width,
			Height:          c.extent.Height,
			Layers:          1,
		})
		if err != nil {
			return errors.Wrapf(err, "framebuffer %d", idx)
		}
		c.framebuffers = append(c.framebuffers, framebuffer)
		c.resources.AddFunc(func() {
			c.device.DestroyFramebuffer(framebuffer)
		})
	}
	c.resources.AddFunc(func() {
		c.framebuffers = nil
	})
	return nil
}

// teardown releases framebuffers, then views, then the swapchain. The
// device must be idle.
func (c *presentationChain) teardown() {
	c.resources.Release()
}
